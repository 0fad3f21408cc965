// Package mpointers provides small helpers for taking the address of a
// literal value, used throughout request/response DTOs that model optional
// fields as pointers.
package mpointers

import "time"

// String returns a pointer to s.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// Int64 returns a pointer to i.
func Int64(i int64) *int64 { return &i }

// Time returns a pointer to t.
func Time(t time.Time) *time.Time { return &t }
