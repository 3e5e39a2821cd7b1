package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/pkg/logger"
	"github.com/wonny/quorum/pkg/redis"
)

// ResolutionError means a query could not be mapped to a tradable ticker
type ResolutionError struct {
	Query  string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %q: %s", e.Query, e.Reason)
}

// Searcher looks a Korean company name up on an external source
type Searcher interface {
	Search(ctx context.Context, name string) (ticker, companyName string, err error)
}

var (
	krCodeRe     = regexp.MustCompile(`^\d{6}$`)
	krSuffixedRe = regexp.MustCompile(`^(\d{6})\.(KS|KQ)$`)
	usTickerRe   = regexp.MustCompile(`^[A-Za-z]{1,5}(-[A-Za-z])?$`)
)

// Resolver turns free-form queries (tickers, Korean company names, English
// company names, "삼성전자 분석해줘") into a canonical analysis request.
type Resolver struct {
	search Searcher // nil disables the external fallback
	cache  *redis.Cache
	group  singleflight.Group
	logger *logger.Logger
}

// New creates a resolver. cache and search may be nil.
func New(search Searcher, cache *redis.Cache, log *logger.Logger) *Resolver {
	return &Resolver{
		search: search,
		cache:  cache,
		logger: log.Named("resolver"),
	}
}

type resolution struct {
	Ticker      string           `json:"ticker"`
	Market      contracts.Market `json:"market"`
	CompanyName string           `json:"company_name,omitempty"`
}

// Resolve maps a query to a ticker and market.
//
// Precedence: explicit code formats, then the static name maps, then latin
// ticker syntax, then the external search for Korean names.
func (r *Resolver) Resolve(ctx context.Context, query string) (contracts.AnalysisRequest, error) {
	cleaned := cleanQuery(query)
	if cleaned == "" {
		return contracts.AnalysisRequest{}, &ResolutionError{Query: query, Reason: "empty query"}
	}

	// 6자리 종목코드
	if krCodeRe.MatchString(cleaned) {
		return r.request(cleaned, contracts.MarketKR, ""), nil
	}

	// Exchange-suffixed KR code (005930.KS)
	if m := krSuffixedRe.FindStringSubmatch(strings.ToUpper(cleaned)); m != nil {
		return r.request(m[1], contracts.MarketKR, ""), nil
	}

	if ticker, ok := lookupName(usNames, usNamesLower, cleaned); ok {
		return r.request(ticker, contracts.MarketUS, cleaned), nil
	}

	if code, ok := lookupName(krNames, krNamesLower, cleaned); ok {
		return r.request(code, contracts.MarketKR, cleaned), nil
	}

	// Latin ticker syntax → US symbol
	if usTickerRe.MatchString(cleaned) {
		return r.request(strings.ToUpper(cleaned), contracts.MarketUS, ""), nil
	}

	if containsHangul(cleaned) {
		return r.searchKorean(ctx, query, cleaned)
	}

	return contracts.AnalysisRequest{}, &ResolutionError{Query: query, Reason: "no matching ticker"}
}

// searchKorean resolves an unmapped Korean name via cache, then the search
// client. Concurrent lookups for the same name are collapsed into one search.
func (r *Resolver) searchKorean(ctx context.Context, query, cleaned string) (contracts.AnalysisRequest, error) {
	if res, ok := r.fromCache(ctx, cleaned); ok {
		return r.request(res.Ticker, res.Market, res.CompanyName), nil
	}

	if r.search == nil {
		return contracts.AnalysisRequest{}, &ResolutionError{Query: query, Reason: "no matching ticker"}
	}

	v, err, _ := r.group.Do(cleaned, func() (interface{}, error) {
		ticker, company, err := r.search.Search(ctx, cleaned)
		if err != nil {
			return nil, err
		}
		res := resolution{Ticker: ticker, Market: contracts.MarketKR, CompanyName: company}
		r.toCache(ctx, cleaned, res)
		return res, nil
	})
	if err != nil {
		r.logger.WithFields(map[string]interface{}{
			"query": cleaned,
			"error": err.Error(),
		}).Warn("Ticker search failed")
		return contracts.AnalysisRequest{}, &ResolutionError{Query: query, Reason: err.Error()}
	}

	res := v.(resolution)
	return r.request(res.Ticker, res.Market, res.CompanyName), nil
}

func (r *Resolver) request(ticker string, market contracts.Market, company string) contracts.AnalysisRequest {
	req := contracts.NewAnalysisRequest(ticker, market)
	req.CompanyName = company
	return req
}

func (r *Resolver) fromCache(ctx context.Context, name string) (resolution, bool) {
	var res resolution
	if r.cache == nil {
		return res, false
	}

	ok, err := r.cache.Get(ctx, redis.ResolutionKey(name), &res)
	if err != nil || !ok {
		return res, false
	}
	return res, res.Ticker != ""
}

func (r *Resolver) toCache(ctx context.Context, name string, res resolution) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, redis.ResolutionKey(name), res, redis.TTLDaily); err != nil {
		r.logger.WithError(err).Debug("Failed to cache resolution")
	}
}

func containsHangul(s string) bool {
	for _, c := range s {
		if unicode.Is(unicode.Hangul, c) {
			return true
		}
	}
	return false
}
