// pkg/framer/framer.go
// Framer 按配置打包与校验消息帧
package framer

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/overlay/pkg/config"
)

// Framer 消息帧处理器接口
type Framer interface {
	// Build 打包消息，序列化失败时原样返回序列化器的错误
	Build(msg Serializable, typ uint16) (*Message, error)

	// Decode 校验一帧完整数据并接管其所有权，调用后不得再修改 frame
	Decode(frame []byte) (*Message, error)

	// Categorize 返回消息类型对应的流量分类
	Categorize(typ uint16) Category

	// MaxBodyBytes 返回允许的最大消息体长度
	MaxBodyBytes() uint32
}

// Config Framer 配置
type Config struct {
	// 最大消息体长度
	MaxBodyBytes uint32 `mapstructure:"max_body_bytes" json:"max_body_bytes" yaml:"max_body_bytes" validate:"required"`

	// 未登记类型的兜底分类
	Fallback Category `mapstructure:"fallback" json:"fallback" yaml:"fallback"`

	// 追加或覆盖内置映射的规则
	Categories []CategoryRule `mapstructure:"categories" json:"categories" yaml:"categories"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxBodyBytes: 64 << 20, // 64MB
		Fallback:     CategoryUnknown,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if err := config.Validate(c); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if !c.Fallback.Valid() {
		return errors.Wrapf(ErrInvalidConfig, "fallback: %v", c.Fallback)
	}
	for i, r := range c.Categories {
		if !r.Category.Valid() {
			return errors.Wrapf(ErrInvalidConfig, "categories[%d]: %v", i, r.Category)
		}
	}
	return nil
}

// frameImpl Framer 实现
type frameImpl struct {
	config     *Config
	categories *CategoryTable
}

// New 创建新的 Framer
func New(cfg *Config) (Framer, error) {
	// 使用 MergeConfig 确保配置完整
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	if err := newCfg.Validate(); err != nil {
		return nil, err
	}

	return &frameImpl{
		config:     newCfg,
		categories: defaultCategoryTable.With(newCfg.Fallback, newCfg.Categories...),
	}, nil
}

// Build 打包消息
func (f *frameImpl) Build(msg Serializable, typ uint16) (*Message, error) {
	return build(msg, typ, f.categories, f.config.MaxBodyBytes)
}

// Decode 校验并接管一帧数据
func (f *frameImpl) Decode(frame []byte) (*Message, error) {
	return decode(frame, f.categories, f.config.MaxBodyBytes)
}

// Categorize 返回流量分类
func (f *frameImpl) Categorize(typ uint16) Category {
	return f.categories.Categorize(typ)
}

// MaxBodyBytes 返回最大消息体长度
func (f *frameImpl) MaxBodyBytes() uint32 {
	return f.config.MaxBodyBytes
}
