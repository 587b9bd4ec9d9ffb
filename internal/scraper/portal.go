package scraper

import (
	"fmt"
	"sort"

	"skillfit-go/internal/constants"
	"skillfit-go/internal/types"
)

// PortalDescriptor 门户抓取脚本描述
type PortalDescriptor struct {
	// Name 门户标识, 请求中使用的规范名
	Name string
	// Script 抓取脚本文件名, 相对于ScriptDir
	Script string
	// OutputFile 脚本产出的结果文件名, 相对于ResultsDir
	OutputFile string
	// RequiresSerpAPI 该门户需要SERP_API_KEY环境变量
	RequiresSerpAPI bool
}

// portalTable 封闭的门户表, 新门户只能在这里登记
var portalTable = map[string]PortalDescriptor{
	string(types.PortalLinkedIn): {
		Name:       string(types.PortalLinkedIn),
		Script:     "linkedin.py",
		OutputFile: "linkedin_jobs.json",
	},
	string(types.PortalIndeed): {
		Name:       string(types.PortalIndeed),
		Script:     "Indeed.py",
		OutputFile: "indeed_jobs.json",
	},
	string(types.PortalGlassdoor): {
		Name:       string(types.PortalGlassdoor),
		Script:     "Glassdoor.py",
		OutputFile: "glassdoor_jobs.json",
	},
	string(types.PortalNaukri): {
		Name:       string(types.PortalNaukri),
		Script:     "Naukri.py",
		OutputFile: "naukri_jobs.json",
	},
	string(types.PortalGoogle): {
		Name:            string(types.PortalGoogle),
		Script:          "google_jobs.py",
		OutputFile:      "google_jobs.json",
		RequiresSerpAPI: true,
	},
}

// LookupPortal 按名称查找门户描述
func LookupPortal(name string) (PortalDescriptor, bool) {
	d, ok := portalTable[name]
	return d, ok
}

// SupportedPortals 返回全部支持的门户名, 字典序
func SupportedPortals() []string {
	names := make([]string, 0, len(portalTable))
	for name := range portalTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePortals 校验请求中的门户列表
// 未知门户不报错, 返回警告信息由调用方记入任务日志; 全部未知时报错
func ResolvePortals(requested []string) ([]PortalDescriptor, []string, error) {
	if len(requested) == 0 {
		return nil, nil, fmt.Errorf("门户列表不能为空")
	}

	var resolved []PortalDescriptor
	var warnings []string
	seen := make(map[string]bool, len(requested))
	for _, name := range requested {
		if seen[name] {
			continue
		}
		seen[name] = true
		d, ok := portalTable[name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("未知门户 %q, 已跳过 (支持: %v)", name, SupportedPortals()))
			continue
		}
		resolved = append(resolved, d)
	}

	if len(resolved) == 0 {
		return nil, warnings, fmt.Errorf("没有可用的门户: %v", requested)
	}
	return resolved, warnings, nil
}

// serpEnv 为需要SerpAPI的门户构建环境变量追加项
func serpEnv(d PortalDescriptor, apiKey string) []string {
	if !d.RequiresSerpAPI || apiKey == "" {
		return nil
	}
	return []string{constants.SerpAPIKeyEnv + "=" + apiKey}
}
