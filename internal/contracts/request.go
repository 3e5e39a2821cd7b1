package contracts

import (
	"fmt"
	"strings"
	"time"
)

// Market identifies which exchange a ticker trades on
type Market string

const (
	MarketKR Market = "KR"
	MarketUS Market = "US"
)

// ParseMarket converts a string to a Market, case-insensitively
func ParseMarket(s string) (Market, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "KR":
		return MarketKR, nil
	case "US":
		return MarketUS, nil
	default:
		return "", fmt.Errorf("unknown market: %q", s)
	}
}

// Valid reports whether the market is a known value
func (m Market) Valid() bool {
	return m == MarketKR || m == MarketUS
}

// AnalysisRequest is the canonical request handed to the dispatcher.
// 디스패치 이후 불변
type AnalysisRequest struct {
	Ticker      string    `json:"ticker"`
	Market      Market    `json:"market"`
	CompanyName string    `json:"company_name,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewAnalysisRequest builds a request stamped with the current time
func NewAnalysisRequest(ticker string, market Market) AnalysisRequest {
	return AnalysisRequest{
		Ticker:      ticker,
		Market:      market,
		SubmittedAt: time.Now(),
	}
}
