package config

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// MergeConfig 将 src 中的非零值深度合并到 dst。
//   - 两者都为 nil 时返回 ErrNilConfig
//   - dst 为 nil 时返回 src，src 为 nil 时返回 dst
//   - 结构体逐字段合并，map 按键合并，切片整体覆盖
//
// 零值不会覆盖 dst 中的默认值，因此 "显式设置为零" 需要用指针字段表达：
// 非 nil 的标量指针（*bool、*int 等）总是覆盖。
func MergeConfig[T any](dst, src *T) (*T, error) {
	switch {
	case dst == nil && src == nil:
		return nil, errors.Wrap(ErrNilConfig, "both dst and src are nil")
	case dst == nil:
		return src, nil
	case src == nil:
		return dst, nil
	}

	if err := mergeValues(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem()); err != nil {
		return nil, errors.Mark(err, ErrMergeFailed)
	}
	return dst, nil
}

// mergeValues 递归合并
func mergeValues(dst, src reflect.Value) error {
	if !src.IsValid() || src.IsZero() {
		return nil
	}

	switch dst.Kind() {
	case reflect.Struct:
		return mergeStruct(dst, src)
	case reflect.Map:
		return mergeMap(dst, src)
	case reflect.Pointer:
		return mergePointer(dst, src)
	default:
		// 基本类型与切片直接覆盖
		if dst.CanSet() {
			dst.Set(src)
		}
		return nil
	}
}

// mergeStruct 合并结构体的导出字段
func mergeStruct(dst, src reflect.Value) error {
	if src.Kind() != reflect.Struct {
		return errors.Newf("src is %s, want struct", src.Kind())
	}

	srcType := src.Type()
	for i := 0; i < src.NumField(); i++ {
		field := srcType.Field(i)
		if !field.IsExported() {
			continue
		}

		dstField := dst.FieldByName(field.Name)
		if !dstField.IsValid() || !dstField.CanSet() {
			continue
		}

		if err := mergeValues(dstField, src.Field(i)); err != nil {
			return errors.Wrapf(err, "field %s", field.Name)
		}
	}
	return nil
}

// mergeMap 按键合并，已存在的键递归合并
func mergeMap(dst, src reflect.Value) error {
	if src.Kind() != reflect.Map {
		return errors.Newf("src is %s, want map", src.Kind())
	}

	if dst.IsNil() {
		dst.Set(reflect.MakeMapWithSize(dst.Type(), src.Len()))
	}

	iter := src.MapRange()
	for iter.Next() {
		key, srcValue := iter.Key(), iter.Value()

		existing := dst.MapIndex(key)
		if !existing.IsValid() {
			dst.SetMapIndex(key, srcValue)
			continue
		}

		merged := reflect.New(dst.Type().Elem()).Elem()
		merged.Set(existing)
		if err := mergeValues(merged, srcValue); err != nil {
			return errors.Wrapf(err, "key %v", key.Interface())
		}
		dst.SetMapIndex(key, merged)
	}
	return nil
}

// mergePointer 合并指针指向的值，dst 为 nil 时新建
func mergePointer(dst, src reflect.Value) error {
	if src.Kind() != reflect.Pointer {
		return errors.Newf("src is %s, want pointer", src.Kind())
	}

	if src.IsNil() {
		return nil
	}

	// 非 nil 的标量指针表示显式设置，零值同样覆盖
	elem := src.Type().Elem()
	if elem.Kind() != reflect.Struct && elem.Kind() != reflect.Map {
		v := reflect.New(elem)
		v.Elem().Set(src.Elem())
		dst.Set(v)
		return nil
	}

	if dst.IsNil() {
		dst.Set(reflect.New(dst.Type().Elem()))
	}
	return mergeValues(dst.Elem(), src.Elem())
}
