package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"skillfit-go/internal/logger"
)

// Standardizer 技能别名归一化器
// 把各门户五花八门的技能写法映射到统一的规范名, 向量匹配依赖这一步
type Standardizer struct {
	aliasMap map[string]string
}

// aliasFile 技能别名文件的JSON结构
type aliasFile struct {
	Technologies []struct {
		Canonical string   `json:"canonical"`
		Aliases   []string `json:"aliases"`
	} `json:"technologies"`
}

// 内置别名表, 别名文件缺失时的兜底
var builtinAliases = map[string]string{
	"js":                          "javascript",
	"ts":                          "typescript",
	"golang":                      "go",
	"py":                          "python",
	"python3":                     "python",
	"k8s":                         "kubernetes",
	"postgres":                    "postgresql",
	"psql":                        "postgresql",
	"ms sql":                      "sql server",
	"mssql":                       "sql server",
	"tf":                          "tensorflow",
	"torch":                       "pytorch",
	"sklearn":                     "scikit-learn",
	"scikit learn":                "scikit-learn",
	"np":                          "numpy",
	"pd":                          "pandas",
	"aws cloud":                   "aws",
	"amazon web services":         "aws",
	"gcp":                         "google cloud",
	"google cloud platform":       "google cloud",
	"ms azure":                    "azure",
	"reactjs":                     "react",
	"react.js":                    "react",
	"nodejs":                      "node.js",
	"node":                        "node.js",
	"vuejs":                       "vue",
	"vue.js":                      "vue",
	"nextjs":                      "next.js",
	"large language models":       "llm",
	"llms":                        "llm",
	"natural language processing": "nlp",
	"computer vision":             "opencv",
	"ci cd":                       "ci/cd",
	"cicd":                        "ci/cd",
	"restful api":                 "rest",
	"rest api":                    "rest",
	"restful apis":                "rest",
}

// NewStandardizer 创建归一化器
// aliasFilePath为空或文件不存在时仅使用内置别名表
func NewStandardizer(aliasFilePath string) *Standardizer {
	s := &Standardizer{aliasMap: make(map[string]string, len(builtinAliases))}
	for alias, canonical := range builtinAliases {
		s.aliasMap[alias] = canonical
	}

	if aliasFilePath != "" {
		if err := s.loadAliasFile(aliasFilePath); err != nil {
			logger.Warn().Err(err).Str("path", aliasFilePath).Msg("加载技能别名文件失败, 仅使用内置别名表")
		}
	}

	return s
}

func (s *Standardizer) loadAliasFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取别名文件失败: %w", err)
	}

	var file aliasFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("解析别名文件失败: %w", err)
	}

	count := 0
	for _, tech := range file.Technologies {
		canonical := strings.ToLower(strings.TrimSpace(tech.Canonical))
		if canonical == "" {
			continue
		}
		s.aliasMap[canonical] = canonical
		count++
		for _, alias := range tech.Aliases {
			clean := strings.ToLower(strings.TrimSpace(alias))
			if clean != "" {
				s.aliasMap[clean] = canonical
				count++
			}
		}
	}

	logger.Info().Int("aliases", count).Str("path", path).Msg("技能别名表加载完成")
	return nil
}

// Standardize 归一化技能列表: 小写去空白, 映射别名, 去重后按字典序返回
func (s *Standardizer) Standardize(skills []string) []string {
	if len(skills) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		clean := strings.ToLower(strings.TrimSpace(skill))
		if clean == "" {
			continue
		}
		if canonical, ok := s.aliasMap[clean]; ok {
			clean = canonical
		}
		seen[clean] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for skill := range seen {
		result = append(result, skill)
	}
	sort.Strings(result)
	return result
}
