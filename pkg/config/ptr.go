package config

// Ptr 返回 v 的指针，用于在配置中显式设置零值（如 false、0）
func Ptr[T any](v T) *T {
	return &v
}

// Deref 返回 *p，p 为 nil 时返回 def
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
