package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// 构建时通过 -ldflags "-X github.com/lk2023060901/overlay/pkg/app.Version=v1.0.0" 注入
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildDate = "unknown"
	AppName   = ""
)

func init() {
	if AppName != "" {
		return
	}
	if execPath, err := os.Executable(); err == nil {
		AppName = filepath.Base(execPath)
	} else {
		AppName = "overlay"
	}
}

// Info 节点版本信息
type Info struct {
	ID        string `json:"id,omitempty"`
	AppName   string `json:"app_name"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo 获取构建信息，不含实例 ID
func GetInfo() Info {
	return Info{
		AppName:   AppName,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Info 返回带实例 ID 与名称的版本信息
func (a *BaseApp) Info() Info {
	info := GetInfo()
	info.ID = a.opts.ID
	info.AppName = a.opts.Name
	info.Version = a.opts.Version
	return info
}

func (i Info) String() string {
	s := fmt.Sprintf("%s %s (commit %s, built %s, %s %s)",
		i.AppName, i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
	if i.ID != "" {
		s += " id=" + i.ID
	}
	return s
}
