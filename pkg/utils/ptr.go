package utils

func StringPtr(s string) *string {
	return &s
}

// StringOrDash подставляет "-" вместо пустого значения в выгрузках.
func StringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
