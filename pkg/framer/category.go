// pkg/framer/category.go
// 流量分类：根据消息类型得出本地分类，不在线路上传输
package framer

import (
	"maps"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Category 流量分类，供外部的流量统计/整形策略使用
type Category int

const (
	CategoryUnknown Category = iota
	CategoryBase
	CategoryCluster
	CategoryOverlay
	CategoryManifests
	CategoryTransaction
	CategoryProposal
	CategoryValidation
	CategoryGetLedger
	CategoryShareLedger
	CategoryGetSet
	CategoryShareSet

	numCategories
)

var categoryNames = [numCategories]string{
	CategoryUnknown:     "unknown",
	CategoryBase:        "base",
	CategoryCluster:     "cluster",
	CategoryOverlay:     "overlay",
	CategoryManifests:   "manifests",
	CategoryTransaction: "transaction",
	CategoryProposal:    "proposal",
	CategoryValidation:  "validation",
	CategoryGetLedger:   "get_ledger",
	CategoryShareLedger: "share_ledger",
	CategoryGetSet:      "get_set",
	CategoryShareSet:    "share_set",
}

// Categories 返回全部已定义的分类
func Categories() []Category {
	out := make([]Category, 0, numCategories)
	for c := Category(0); c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}

// Valid 是否为已定义的分类
func (c Category) Valid() bool {
	return c >= 0 && c < numCategories
}

func (c Category) String() string {
	if !c.Valid() {
		return "category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// ParseCategory 按名称解析分类（不区分大小写）
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range categoryNames {
		if n == name {
			return Category(c), nil
		}
	}
	return CategoryUnknown, errors.Wrapf(ErrUnknownCategory, "%q", name)
}

// MarshalText 实现 encoding.TextMarshaler
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, errors.Wrapf(ErrUnknownCategory, "%d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，配置文件中可以直接写分类名
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CategoryRule 单条 类型 -> 分类 映射
type CategoryRule struct {
	Type     uint16   `mapstructure:"type" json:"type" yaml:"type"`
	Category Category `mapstructure:"category" json:"category" yaml:"category"`
}

// CategoryTable 类型到分类的全量映射，未登记的类型落入 fallback。
// 构建后只读，可并发使用。
type CategoryTable struct {
	table    map[uint16]Category
	fallback Category
}

// NewCategoryTable 创建映射表，后出现的规则覆盖先出现的
func NewCategoryTable(fallback Category, rules ...CategoryRule) *CategoryTable {
	t := &CategoryTable{
		table:    make(map[uint16]Category, len(rules)),
		fallback: fallback,
	}
	for _, r := range rules {
		t.table[r.Type] = r.Category
	}
	return t
}

// Categorize 返回消息类型对应的分类
func (t *CategoryTable) Categorize(typ uint16) Category {
	if t == nil {
		return defaultCategoryTable.Categorize(typ)
	}
	if c, ok := t.table[typ]; ok {
		return c
	}
	return t.fallback
}

// Fallback 返回兜底分类
func (t *CategoryTable) Fallback() Category {
	return t.fallback
}

// With 返回叠加了新规则的副本，原表不变
func (t *CategoryTable) With(fallback Category, rules ...CategoryRule) *CategoryTable {
	if t == nil {
		t = defaultCategoryTable
	}
	out := &CategoryTable{
		table:    maps.Clone(t.table),
		fallback: fallback,
	}
	if out.table == nil {
		out.table = make(map[uint16]Category, len(rules))
	}
	for _, r := range rules {
		out.table[r.Type] = r.Category
	}
	return out
}

// Len 返回显式登记的类型数量
func (t *CategoryTable) Len() int {
	return len(t.table)
}

var defaultCategoryTable = NewCategoryTable(CategoryUnknown,
	CategoryRule{TypeHello, CategoryBase},
	CategoryRule{TypeManifests, CategoryManifests},
	CategoryRule{TypePing, CategoryBase},
	CategoryRule{TypeProofOfWork, CategoryBase},
	CategoryRule{TypeCluster, CategoryCluster},
	CategoryRule{TypeGetPeers, CategoryOverlay},
	CategoryRule{TypePeers, CategoryOverlay},
	CategoryRule{TypeEndpoints, CategoryOverlay},
	CategoryRule{TypeTransaction, CategoryTransaction},
	CategoryRule{TypeGetLedger, CategoryGetLedger},
	CategoryRule{TypeLedgerData, CategoryShareLedger},
	CategoryRule{TypeProposeLedger, CategoryProposal},
	CategoryRule{TypeStatusChange, CategoryBase},
	CategoryRule{TypeHaveSet, CategoryGetSet},
	CategoryRule{TypeValidation, CategoryValidation},
	CategoryRule{TypeGetObjects, CategoryGetSet},
)

// DefaultCategoryTable 返回内置映射表（只读共享实例）
func DefaultCategoryTable() *CategoryTable {
	return defaultCategoryTable
}
