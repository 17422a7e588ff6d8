package ratelimit

import "strconv"

// formatação de valores numéricos em headers sem passar por fmt.

func formatInt(v int) string { return strconv.Itoa(v) }

func formatInt64(v int64) string { return strconv.FormatInt(v, 10) }
