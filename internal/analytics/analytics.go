package analytics

import (
	"sort"
	"strings"

	"skillfit-go/internal/scorer"
	"skillfit-go/internal/skills"
	"skillfit-go/internal/types"
)

// 过于宽泛/非技术的技能词, 不进入技能榜
var skillNoise = map[string]struct{}{
	"teams": {}, "team": {}, "less": {}, "more": {}, "show": {}, "safe": {},
	"test": {}, "testing": {}, "go": {}, "scheme": {}, "foundation": {},
	"coding": {}, "designing": {}, "engineering": {}, "communication": {},
	"collaboration": {}, "leadership": {}, "mentoring": {}, "research": {},
	"analytics": {}, "trade": {}, "sprint": {}, "compliance": {},
	"data quality": {}, "edge ai": {}, "cloud": {}, "databases": {},
	"cloud platforms": {}, "cloud technologies": {}, "cloud-native": {},
	"data management": {}, "data preprocessing": {}, "experimentation": {},
	"problem solving": {}, "operational risk": {}, "risk mitigation": {},
	"user experience": {}, "use cases": {}, "graph": {}, "t-": {}, "cv": {},
	"ai": {}, "ml": {}, "data analyst": {}, "data scientist": {},
	"model deployment": {}, "embeddings": {}, "summarization": {},
	"question answering": {},
}

// NameCount 榜单条目
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RangeCount 分数分布桶
type RangeCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// Result 仪表盘分析结果
type Result struct {
	TotalJobs            int          `json:"total_jobs"`
	AvgMatchScore        float64      `json:"avg_match_score"`
	WorkModeDistribution []NameCount  `json:"work_mode_distribution"`
	TopSkills            []NameCount  `json:"top_skills"`
	TopLocations         []NameCount  `json:"top_locations"`
	TopCompanies         []NameCount  `json:"top_companies"`
	TopRoles             []NameCount  `json:"top_roles"`
	ScoreDistribution    []RangeCount `json:"score_distribution"`
	PortalBreakdown      []NameCount  `json:"portal_breakdown"`
}

// Aggregator 岗位列表 → 仪表盘统计. 纯计算, 无任何IO
type Aggregator struct {
	standardizer *skills.Standardizer
}

// NewAggregator 创建聚合器
func NewAggregator(standardizer *skills.Standardizer) *Aggregator {
	return &Aggregator{standardizer: standardizer}
}

// counter 保持首次出现顺序的计数器, 并列计数时先出现者排前
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// mostCommon 按计数降序取前n个, 并列按首次出现顺序 (稳定排序)
func (c *counter) mostCommon(n int) []NameCount {
	entries := make([]NameCount, 0, len(c.order))
	for _, key := range c.order {
		entries = append(entries, NameCount{Name: key, Count: c.counts[key]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Compute 计算一批岗位的仪表盘统计
func (a *Aggregator) Compute(jobs []types.Job) Result {
	result := Result{
		WorkModeDistribution: []NameCount{},
		TopSkills:            []NameCount{},
		TopLocations:         []NameCount{},
		TopCompanies:         []NameCount{},
		TopRoles:             []NameCount{},
		ScoreDistribution:    []RangeCount{},
		PortalBreakdown:      []NameCount{},
	}
	if len(jobs) == 0 {
		return result
	}

	skillCounter := newCounter()
	locationCounter := newCounter()
	companyCounter := newCounter()
	roleCounter := newCounter()
	portalCounter := newCounter()
	workModeCounter := newCounter()

	buckets := [6]int{} // 90-100, 80-89, 70-79, 60-69, 50-59, 0-49
	var totalScore float64

	for _, job := range jobs {
		for _, skill := range a.standardizer.Standardize(job.Skills) {
			clean := strings.TrimSpace(strings.ToLower(skill))
			if clean == "" || len(clean) <= 1 {
				continue
			}
			if _, noisy := skillNoise[clean]; noisy {
				continue
			}
			skillCounter.add(clean)
		}

		for _, city := range NormalizeLocations(job.Location) {
			if city == "Unknown" {
				continue
			}
			locationCounter.add(city)
		}

		company := strings.TrimSpace(job.Company)
		if company != "" && company != "N/A" {
			companyCounter.add(company)
		}

		if role := NormalizeTitle(job.Title); role != "Unknown" {
			roleCounter.add(role)
		}

		switch score := job.MatchScore; {
		case score >= 90:
			buckets[0]++
		case score >= 80:
			buckets[1]++
		case score >= 70:
			buckets[2]++
		case score >= 60:
			buckets[3]++
		case score >= 50:
			buckets[4]++
		default:
			buckets[5]++
		}

		portal := job.Portal
		if portal == "" {
			portal = "unknown"
		}
		portalCounter.add(portal)

		workModeCounter.add(classifyWorkMode(job))

		totalScore += job.MatchScore
	}

	result.TotalJobs = len(jobs)
	result.AvgMatchScore = scorer.Round1(totalScore / float64(len(jobs)))
	result.WorkModeDistribution = workModeCounter.mostCommon(0)
	result.TopSkills = skillCounter.mostCommon(20)
	result.TopLocations = locationCounter.mostCommon(15)
	result.TopCompanies = companyCounter.mostCommon(15)
	result.TopRoles = roleCounter.mostCommon(10)
	result.PortalBreakdown = portalCounter.mostCommon(0)

	bucketNames := [6]string{"90-100", "80-89", "70-79", "60-69", "50-59", "0-49"}
	for i, name := range bucketNames {
		result.ScoreDistribution = append(result.ScoreDistribution, RangeCount{Range: name, Count: buckets[i]})
	}

	return result
}

// classifyWorkMode 工作模式分类: remote 优先于 hybrid, 否则 On-site
// 只扫描地点+职位名+描述前500字符的窗口
func classifyWorkMode(job types.Job) string {
	desc := job.Description
	if len(desc) > 500 {
		desc = desc[:500]
	}
	text := strings.ToLower(job.Location + " " + job.Title + " " + desc)

	switch {
	case strings.Contains(text, "remote"):
		return "Remote"
	case strings.Contains(text, "hybrid"):
		return "Hybrid"
	default:
		return "On-site"
	}
}
