package resolver

import "strings"

// Static name maps for the most commonly requested tickers. Lookups that
// miss here fall through to the search client.

// 주요 미국 종목 한글명 → 티커
var usNames = map[string]string{
	"애플":        "AAPL",
	"마이크로소프트":   "MSFT",
	"구글":        "GOOGL",
	"알파벳":       "GOOGL",
	"아마존":       "AMZN",
	"메타":        "META",
	"페이스북":      "META",
	"엔비디아":      "NVDA",
	"테슬라":       "TSLA",
	"넷플릭스":      "NFLX",
	"인텔":        "INTC",
	"퀄컴":        "QCOM",
	"브로드컴":      "AVGO",
	"마이크론":      "MU",
	"대만반도체":     "TSM",
	"JP모건":      "JPM",
	"골드만삭스":     "GS",
	"뱅크오브아메리카":  "BAC",
	"비자":        "V",
	"마스터카드":     "MA",
	"페이팔":       "PYPL",
	"버크셔해서웨이":   "BRK-B",
	"존슨앤존슨":     "JNJ",
	"화이자":       "PFE",
	"모더나":       "MRNA",
	"일라이릴리":     "LLY",
	"코카콜라":      "KO",
	"맥도날드":      "MCD",
	"나이키":       "NKE",
	"스타벅스":      "SBUX",
	"월마트":       "WMT",
	"코스트코":      "COST",
	"보잉":        "BA",
	"록히드마틴":     "LMT",
	"엑손모빌":      "XOM",
	"셰브론":       "CVX",
	"리비안":       "RIVN",
	"루시드":       "LCID",
	"디즈니":       "DIS",
	"세일즈포스":     "CRM",
	"어도비":       "ADBE",
	"오라클":       "ORCL",
	"팔란티어":      "PLTR",
	"코인베이스":     "COIN",
	"크라우드스트라이크": "CRWD",
	"에어비앤비":     "ABNB",
	"우버":        "UBER",
	"스포티파이":     "SPOT",
}

// 주요 한국 종목 한글명 → 종목코드
var krNames = map[string]string{
	"삼성전자":      "005930",
	"SK하이닉스":    "000660",
	"현대차":       "005380",
	"현대자동차":     "005380",
	"LG에너지솔루션":  "373220",
	"기아":        "000270",
	"셀트리온":      "068270",
	"KB금융":      "105560",
	"신한지주":      "055550",
	"포스코홀딩스":    "005490",
	"NAVER":     "035420",
	"네이버":       "035420",
	"카카오":       "035720",
	"LG전자":      "066570",
	"삼성SDI":     "006400",
	"삼성바이오로직스":  "207940",
	"현대모비스":     "012330",
	"한국전력":      "015760",
	"SK이노베이션":   "096770",
	"삼성물산":      "028260",
	"SK텔레콤":     "017670",
	"KT":         "030200",
	"하나금융지주":    "086790",
	"우리금융지주":    "316140",
	"LG화학":      "051910",
	"한화에어로스페이스": "012450",
	"크래프톤":      "259960",
	"두산에너빌리티":   "034020",
}

// Case-insensitive variants so sk하이닉스 still matches SK하이닉스
var (
	usNamesLower = lowerKeys(usNames)
	krNamesLower = lowerKeys(krNames)
)

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// lookupName checks a name map case-insensitively
func lookupName(m, mLower map[string]string, name string) (string, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	v, ok := mLower[strings.ToLower(name)]
	return v, ok
}

// 입력에서 한국어 동사/조사 접미사 제거
var querySuffixes = []string{
	"분석해줘", "분석해주세요", "분석해", "분석하기", "분석",
	"알려줘", "알려주세요", "조회해줘", "조회해", "조회",
	"검색해줘", "검색해", "검색", "찾아줘", "찾아",
	"보여줘", "보여주세요",
}

// cleanQuery strips trailing request verbs so "삼성전자 분석해줘" resolves
// the same as "삼성전자"
func cleanQuery(query string) string {
	cleaned := strings.TrimSpace(query)
	for _, suffix := range querySuffixes {
		if strings.HasSuffix(cleaned, suffix) {
			cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, suffix))
			break
		}
	}
	return cleaned
}
