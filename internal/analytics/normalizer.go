package analytics

import (
	"regexp"
	"strings"
	"unicode"
)

// 印度邦/直辖区名单: 城市粒度已足够, 邦名是冗余段, 直接丢弃
var indianStates = map[string]struct{}{
	"andhra pradesh": {}, "arunachal pradesh": {}, "assam": {}, "bihar": {},
	"chhattisgarh": {}, "goa": {}, "gujarat": {}, "haryana": {}, "himachal pradesh": {},
	"jharkhand": {}, "karnataka": {}, "kerala": {}, "madhya pradesh": {}, "maharashtra": {},
	"manipur": {}, "meghalaya": {}, "mizoram": {}, "nagaland": {}, "odisha": {},
	"punjab": {}, "rajasthan": {}, "sikkim": {}, "tamil nadu": {}, "telangana": {},
	"tripura": {}, "uttar pradesh": {}, "uttarakhand": {}, "west bengal": {},
	"delhi": {}, "new delhi": {},
}

// 地名别名 → 规范城市名
var cityAliases = map[string]string{
	"bengaluru":          "Bengaluru",
	"bangalore":          "Bengaluru",
	"blr":                "Bengaluru",
	"hyderabad":          "Hyderabad",
	"hyderābād":          "Hyderabad",
	"hyd":                "Hyderabad",
	"chennai":            "Chennai",
	"selaiyur":           "Chennai",
	"mumbai":             "Mumbai",
	"bombay":             "Mumbai",
	"navi mumbai":        "Mumbai",
	"pune":               "Pune",
	"gurugram":           "Gurugram",
	"gurgaon":            "Gurugram",
	"noida":              "Noida",
	"kolkata":            "Kolkata",
	"calcutta":           "Kolkata",
	"ahmedabad":          "Ahmedabad",
	"jaipur":             "Jaipur",
	"lucknow":            "Lucknow",
	"chandigarh":         "Chandigarh",
	"coimbatore":         "Coimbatore",
	"kochi":              "Kochi",
	"cochin":             "Kochi",
	"thiruvananthapuram": "Thiruvananthapuram",
	"trivandrum":         "Thiruvananthapuram",
	"indore":             "Indore",
	"nagpur":             "Nagpur",
	"visakhapatnam":      "Visakhapatnam",
	"vizag":              "Visakhapatnam",
	"vijayawada":         "Vijayawada",
	"vijayawāda":         "Vijayawada",
	"amravati":           "Amravati",
	"india":              "India (Remote/Pan-India)",
}

// 方位/区块噪声: 含这些片段的地名段通常是 "Malad West" 一类的城区细节
var locationNoiseTokens = []string{"dely", "west", "east", "north", "south", "sector"}

var (
	parentheticalRe  = regexp.MustCompile(`\(.*?\)`)
	titleSuffixRe    = regexp.MustCompile(`(?i)\s*[-–—]\s*(Bang|Hyd|Chennai|Hybrid|MNC|Immediate|Across|Python).*$`)
	vpPrefixRe       = regexp.MustCompile(`(?i)^(vice\s+president|vp)\s*[-–—]\s*`)
	seniorRe         = regexp.MustCompile(`(?i)\bSr\.?\s`)
	juniorRe         = regexp.MustCompile(`(?i)\bJr\.?\s`)
	aimlRe           = regexp.MustCompile(`(?i)\bAI\s*/?\s*ML\b`)
	aimlCompactRe    = regexp.MustCompile(`(?i)\bAIML\b`)
	dsPrefixRe       = regexp.MustCompile(`(?i)^Data\s+Science\s*[-–—]\s*`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	periodSpaceRe    = regexp.MustCompile(`\.\s`)
)

// NormalizeLocations 把门户抓来的地点乱串解析为规范城市名列表
//
// 示例:
//
//	"Hyderabad, Chennai, Bengaluru"        → ["Hyderabad", "Chennai", "Bengaluru"]
//	"Amravati, Maharashtra (+1 other)"     → ["Amravati"]
//	"Selaiyur, Chennai, Tamil Nadu"        → ["Chennai"]
//	"India"                                → ["India (Remote/Pan-India)"]
//	"" / "N/A"                             → ["Unknown"]
func NormalizeLocations(rawLocation string) []string {
	if rawLocation == "" || rawLocation == "N/A" {
		return []string{"Unknown"}
	}

	cleaned := strings.TrimSpace(parentheticalRe.ReplaceAllString(rawLocation, ""))

	var cities []string
	for _, part := range strings.Split(cleaned, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)

		if _, isState := indianStates[lower]; isState {
			continue
		}

		if canonical, ok := cityAliases[lower]; ok {
			cities = append(cities, canonical)
			continue
		}

		if containsAny(lower, locationNoiseTokens) {
			continue
		}
		cities = append(cities, titleCase(part))
	}

	// 同一岗位同一城市只计一次
	seen := make(map[string]struct{}, len(cities))
	unique := cities[:0]
	for _, city := range cities {
		if _, dup := seen[city]; dup {
			continue
		}
		seen[city] = struct{}{}
		unique = append(unique, city)
	}

	if len(unique) == 0 {
		return []string{"Unknown"}
	}
	return unique
}

// NormalizeTitle 归一化岗位名, 让相近写法聚到同一条目
//
// 示例:
//
//	"Data scientist- Bang/Hyd/Chennai-Hybrid-MNC" → "Data Scientist"
//	"Sr. Data Scientist"                          → "Senior Data Scientist"
//	"Vice President - Lead Data Scientist (...)"  → "Lead Data Scientist"
func NormalizeTitle(rawTitle string) string {
	title := strings.TrimSpace(rawTitle)
	if title == "" {
		return "Unknown"
	}

	title = titleSuffixRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(parentheticalRe.ReplaceAllString(title, ""))
	title = strings.TrimSpace(vpPrefixRe.ReplaceAllString(title, ""))

	title = seniorRe.ReplaceAllString(title, "Senior ")
	title = juniorRe.ReplaceAllString(title, "Junior ")
	title = aimlRe.ReplaceAllString(title, "AI/ML")
	title = aimlCompactRe.ReplaceAllString(title, "AI/ML")
	title = strings.TrimSpace(dsPrefixRe.ReplaceAllString(title, ""))

	title = strings.TrimSpace(whitespaceRe.ReplaceAllString(title, " "))
	title = periodSpaceRe.ReplaceAllString(title, " ")
	title = strings.TrimSpace(strings.TrimRight(title, "- ."))

	title = titleCase(title)
	// 修复title-case破坏的缩写
	title = strings.ReplaceAll(title, "Ai/Ml", "AI/ML")
	title = strings.ReplaceAll(title, "Ai ", "AI ")
	title = strings.ReplaceAll(title, "Ml ", "ML ")
	title = strings.ReplaceAll(title, "Llm", "LLM")
	title = strings.ReplaceAll(title, "Nlp", "NLP")

	if title == "" {
		return "Unknown"
	}
	return title
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

// titleCase 单词首字母大写, 其余小写 (对应Python的str.title行为, 按空格和连字符分词)
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
