package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Cedric-Liu/3bros/internal/model"
)

const (
	tencentKlineAPI  = "https://web.ifzq.gtimg.cn/appstock/app/fqkline/get"
	tencentQuoteAPI  = "https://qt.gtimg.cn/q="
	eastmoneyListAPI = "https://push2.eastmoney.com/api/qt/clist/get"
)

// TencentFetcher implements Fetcher using the Tencent finance public API
// for klines and quotes, and the Eastmoney list API for the scan universe.
type TencentFetcher struct {
	Client *http.Client
}

// NewTencentFetcher creates a fetcher with a sane default timeout.
func NewTencentFetcher() *TencentFetcher {
	return &TencentFetcher{
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *TencentFetcher) Name() string { return "tencent" }

// tencentSymbol converts a bare code to the exchange-prefixed form.
// 支持股票和ETF：6/5开头上海，0/3/1开头深圳，8/4开头北交所。
func tencentSymbol(symbol string) string {
	switch {
	case strings.HasPrefix(symbol, "6"), strings.HasPrefix(symbol, "5"):
		return "sh" + symbol
	case strings.HasPrefix(symbol, "0"), strings.HasPrefix(symbol, "3"), strings.HasPrefix(symbol, "1"):
		return "sz" + symbol
	case strings.HasPrefix(symbol, "8"), strings.HasPrefix(symbol, "4"):
		return "bj" + symbol
	default:
		return "sh" + symbol
	}
}

// indexSymbol converts an index code. 指数代码的交易所前缀与个股规则不同。
func indexSymbol(symbol string) string {
	switch symbol {
	case "000001", "000688":
		return "sh" + symbol
	case "399001", "399006":
		return "sz" + symbol
	}
	if strings.HasPrefix(symbol, "000") {
		return "sh" + symbol
	}
	return "sz" + symbol
}

func (f *TencentFetcher) get(u string, referer string) ([]byte, error) {
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Referer", referer)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// klineResponse is the Tencent kline API envelope. Each kline row is
// [date, open, close, high, low, volume, ...] with numbers as strings.
type klineResponse struct {
	Code int                        `json:"code"`
	Msg  string                     `json:"msg"`
	Data map[string]json.RawMessage `json:"data"`
}

func rowFloat(row []interface{}, i int) float64 {
	if i >= len(row) {
		return 0
	}
	switch v := row[i].(type) {
	case string:
		n, _ := strconv.ParseFloat(v, 64)
		return n
	case float64:
		return v
	default:
		return 0
	}
}

func parseKlines(rows [][]interface{}) (model.PriceSeries, error) {
	bars := make(model.PriceSeries, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		dateStr, _ := row[0].(string)
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		bars = append(bars, model.PriceBar{
			Date:   date,
			Open:   rowFloat(row, 1),
			Close:  rowFloat(row, 2),
			High:   rowFloat(row, 3),
			Low:    rowFloat(row, 4),
			Volume: rowFloat(row, 5),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no kline data")
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func (f *TencentFetcher) fetchKlines(prefixed string, days int, fqType string) (model.PriceSeries, error) {
	param := fmt.Sprintf("%s,day,,,%d,%s", prefixed, days, fqType)
	u := fmt.Sprintf("%s?param=%s", tencentKlineAPI, url.QueryEscape(param))

	body, err := f.get(u, "https://gu.qq.com/")
	if err != nil {
		return nil, fmt.Errorf("tencent kline: %w", err)
	}

	var envelope klineResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("tencent kline decode: %w", err)
	}
	raw, ok := envelope.Data[prefixed]
	if !ok {
		return nil, fmt.Errorf("tencent kline: no data for %s", prefixed)
	}

	// 复权数据键名为 qfqday/hfqday，不复权为 day
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("tencent kline decode symbol: %w", err)
	}
	rowsRaw, ok := payload[fqType+"day"]
	if !ok {
		rowsRaw, ok = payload["day"]
	}
	if !ok {
		return nil, fmt.Errorf("tencent kline: no day data for %s", prefixed)
	}

	var rows [][]interface{}
	if err := json.Unmarshal(rowsRaw, &rows); err != nil {
		return nil, fmt.Errorf("tencent kline decode rows: %w", err)
	}
	bars, err := parseKlines(rows)
	if err != nil {
		return nil, fmt.Errorf("tencent kline %s: %w", prefixed, err)
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// DailyBars fetches 前复权 daily bars for a stock or ETF.
func (f *TencentFetcher) DailyBars(symbol string, days int) (model.PriceSeries, error) {
	return f.fetchKlines(tencentSymbol(symbol), days, "qfq")
}

// IndexDailyBars fetches daily bars for a market index.
func (f *TencentFetcher) IndexDailyBars(symbol string, days int) (model.PriceSeries, error) {
	return f.fetchKlines(indexSymbol(symbol), days, "")
}

// Quote fetches and parses the realtime tilde-separated quote string.
// 格式: v_sh600519="1~贵州茅台~600519~1342.00~1337.00~..."
func (f *TencentFetcher) Quote(symbol string) (*model.Quote, error) {
	prefixed := tencentSymbol(symbol)
	body, err := f.get(tencentQuoteAPI+prefixed, "https://gu.qq.com/")
	if err != nil {
		return nil, fmt.Errorf("tencent quote: %w", err)
	}
	return parseQuote(string(body))
}

func parseQuote(text string) (*model.Quote, error) {
	if !strings.Contains(text, "=") || strings.Contains(text, `""`) {
		return nil, fmt.Errorf("tencent quote: empty response")
	}
	payload := strings.SplitN(text, "=", 2)[1]
	payload = strings.Trim(strings.TrimSpace(payload), `";`)
	parts := strings.Split(payload, "~")
	if len(parts) < 35 {
		return nil, fmt.Errorf("tencent quote: unexpected field count %d", len(parts))
	}

	field := func(i int) float64 {
		if i >= len(parts) || parts[i] == "" {
			return 0
		}
		n, _ := strconv.ParseFloat(parts[i], 64)
		return n
	}

	q := &model.Quote{
		Code:      parts[2],
		Name:      parts[1],
		Price:     field(3),
		PrevClose: field(4),
		Open:      field(5),
		Volume:    field(6) * 100, // 手转股
		High:      field(33),
		Low:       field(34),
		Change:    field(31),
		ChangePct: field(32),
	}
	if len(parts) > 37 {
		q.Amount = field(37) * 10000 // 万元转元
	}
	return q, nil
}

// listResponse is the Eastmoney clist envelope after the JSONP wrapper is
// stripped.
type listResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Diff []struct {
			Code      string      `json:"f12"`
			Name      string      `json:"f14"`
			ChangePct interface{} `json:"f3"`
		} `json:"diff"`
	} `json:"data"`
}

// ScanUniverse lists active A股 symbols sorted by turnover, filtering out
// ST shares and fresh listings.
func (f *TencentFetcher) ScanUniverse(limit int) ([]model.Listing, error) {
	params := url.Values{}
	params.Set("cb", "jQuery")
	params.Set("fid", "f6") // 按成交额排序
	params.Set("po", "1")
	params.Set("pz", strconv.Itoa(limit))
	params.Set("pn", "1")
	params.Set("np", "1")
	params.Set("fltt", "2")
	params.Set("invt", "2")
	params.Set("ut", "b2884a393a59ad64002292a3e90d46a5")
	params.Set("fs", "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23")
	params.Set("fields", "f12,f14,f3,f6")
	params.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))

	body, err := f.get(eastmoneyListAPI+"?"+params.Encode(), "https://quote.eastmoney.com/")
	if err != nil {
		return nil, fmt.Errorf("eastmoney list: %w", err)
	}

	text := string(body)
	if start := strings.Index(text, "("); start >= 0 {
		if end := strings.LastIndex(text, ")"); end > start {
			text = text[start+1 : end]
		}
	}

	var envelope listResponse
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("eastmoney list decode: %w", err)
	}
	if envelope.RC != 0 || envelope.Data == nil {
		return nil, fmt.Errorf("eastmoney list: rc=%d", envelope.RC)
	}

	listings := make([]model.Listing, 0, len(envelope.Data.Diff))
	for _, item := range envelope.Data.Diff {
		if item.Code == "" || item.Name == "" {
			continue
		}
		// 过滤ST股票和新股
		if strings.Contains(item.Name, "ST") ||
			strings.HasPrefix(item.Name, "N") || strings.HasPrefix(item.Name, "C") {
			continue
		}
		listings = append(listings, model.Listing{
			Code:      item.Code,
			Name:      item.Name,
			ChangePct: anyFloat(item.ChangePct),
		})
	}
	return listings, nil
}

func anyFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
