// Package tokenstats is a read-through proxy over the chain explorer API:
// token metadata, holder list and buy/sell volume aggregated from transfers
// against the trading contract.
package tokenstats

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/morb-dev/morbsite/internal/config"
)

type Client struct {
	httpClient     *http.Client
	baseURL        string
	tokenAddress   string
	tradingAddress string
}

func NewClient(cfg config.TokenStats) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: 15 * time.Second},
		baseURL:        cfg.ExplorerURL,
		tokenAddress:   cfg.TokenAddress,
		tradingAddress: cfg.TradingAddress,
	}
}

// Wire shapes of the explorer API.

type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type tokenInfo struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    string `json:"decimals"`
	TotalSupply string `json:"totalSupply"`
}

type tokenHolder struct {
	Address string `json:"address"`
	Value   string `json:"value"`
}

type tokenTransfer struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	TimeStamp string `json:"timeStamp"`
}

// Aggregated output shapes.

type Stats struct {
	TokenInfo TokenInfoStats `json:"tokenInfo"`
	Holders   HolderStats    `json:"holders"`
	Volume    VolumeStats    `json:"volume"`
}

type TokenInfoStats struct {
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	Decimals       string `json:"decimals"`
	TotalSupply    string `json:"totalSupply"`
	TotalSupplyRaw string `json:"totalSupplyRaw"`
}

type HolderStats struct {
	Count      int      `json:"count"`
	TopHolders []Holder `json:"topHolders"`
}

type Holder struct {
	Address    string `json:"address"`
	Balance    string `json:"balance"`
	BalanceRaw string `json:"balanceRaw"`
}

type VolumeStats struct {
	Total         string                  `json:"total"`
	TotalRaw      string                  `json:"totalRaw"`
	TransferCount int                     `json:"transferCount"`
	Breakdown     map[string]VolumeBucket `json:"breakdown"`
}

type VolumeBucket struct {
	Buys      string `json:"buys"`
	Sells     string `json:"sells"`
	Total     string `json:"total"`
	BuyCount  int    `json:"buyCount"`
	SellCount int    `json:"sellCount"`
}

func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("explorer request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope explorerResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode explorer response: %w", err)
	}
	if envelope.Status != "1" {
		// "No transactions found" is a valid empty result, not a failure.
		if envelope.Message == "No transactions found" {
			return nil
		}
		return fmt.Errorf("explorer returned status %s: %s", envelope.Status, envelope.Message)
	}
	return json.Unmarshal(envelope.Result, out)
}

// Fetch pulls token info, holders and transfers and aggregates volume.
func (c *Client) Fetch(ctx context.Context) (*Stats, error) {
	var info tokenInfo
	err := c.get(ctx, url.Values{
		"module":          {"token"},
		"action":          {"getToken"},
		"contractaddress": {c.tokenAddress},
	}, &info)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token info: %w", err)
	}

	var holders []tokenHolder
	err = c.get(ctx, url.Values{
		"module":          {"token"},
		"action":          {"getTokenHolders"},
		"contractaddress": {c.tokenAddress},
	}, &holders)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token holders: %w", err)
	}

	var transfers []tokenTransfer
	err = c.get(ctx, url.Values{
		"module":          {"account"},
		"action":          {"tokentx"},
		"address":         {c.tradingAddress},
		"contractaddress": {c.tokenAddress},
		"startblock":      {"0"},
		"endblock":        {"99999999"},
		"sort":            {"asc"},
	}, &transfers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token transfers: %w", err)
	}

	return c.aggregate(info, holders, transfers), nil
}

type volumeAccumulator struct {
	buys, sells         *big.Int
	buyCount, sellCount int
}

func newVolumeAccumulator() *volumeAccumulator {
	return &volumeAccumulator{buys: new(big.Int), sells: new(big.Int)}
}

func (c *Client) aggregate(info tokenInfo, holders []tokenHolder, transfers []tokenTransfer) *Stats {
	decimals, err := strconv.Atoi(info.Decimals)
	if err != nil {
		decimals = 18
	}

	now := time.Now().Unix()
	windows := map[string]int64{
		"24h":   now - 24*60*60,
		"72h":   now - 72*60*60,
		"7d":    now - 7*24*60*60,
		"total": 0,
	}
	buckets := make(map[string]*volumeAccumulator, len(windows))
	for name := range windows {
		buckets[name] = newVolumeAccumulator()
	}

	trading := strings.ToLower(c.tradingAddress)
	for _, transfer := range transfers {
		timestamp, err := strconv.ParseInt(transfer.TimeStamp, 10, 64)
		if err != nil {
			continue
		}
		value, ok := new(big.Int).SetString(transfer.Value, 10)
		if !ok {
			continue
		}

		isBuy := strings.ToLower(transfer.From) == trading
		isSell := strings.ToLower(transfer.To) == trading
		if !isBuy && !isSell {
			continue
		}

		for name, since := range windows {
			if timestamp < since {
				continue
			}
			acc := buckets[name]
			if isBuy {
				acc.buys.Add(acc.buys, value)
				acc.buyCount++
			} else {
				acc.sells.Add(acc.sells, value)
				acc.sellCount++
			}
		}
	}

	total := buckets["total"]
	totalVolume := new(big.Int).Add(total.buys, total.sells)

	breakdown := make(map[string]VolumeBucket, len(buckets))
	for name, acc := range buckets {
		breakdown[name] = VolumeBucket{
			Buys:      formatUnits(acc.buys, decimals),
			Sells:     formatUnits(acc.sells, decimals),
			Total:     formatUnits(new(big.Int).Add(acc.buys, acc.sells), decimals),
			BuyCount:  acc.buyCount,
			SellCount: acc.sellCount,
		}
	}

	topHolders := holders
	if len(topHolders) > 10 {
		topHolders = topHolders[:10]
	}
	top := make([]Holder, 0, len(topHolders))
	for _, holder := range topHolders {
		balance, ok := new(big.Int).SetString(holder.Value, 10)
		if !ok {
			balance = new(big.Int)
		}
		top = append(top, Holder{
			Address:    holder.Address,
			Balance:    formatUnits(balance, decimals),
			BalanceRaw: holder.Value,
		})
	}

	supply, ok := new(big.Int).SetString(info.TotalSupply, 10)
	if !ok {
		supply = new(big.Int)
	}

	return &Stats{
		TokenInfo: TokenInfoStats{
			Name:           info.Name,
			Symbol:         info.Symbol,
			Decimals:       info.Decimals,
			TotalSupply:    formatUnits(supply, decimals),
			TotalSupplyRaw: info.TotalSupply,
		},
		Holders: HolderStats{Count: len(holders), TopHolders: top},
		Volume: VolumeStats{
			Total:         formatUnits(totalVolume, decimals),
			TotalRaw:      totalVolume.String(),
			TransferCount: len(transfers),
			Breakdown:     breakdown,
		},
	}
}

// formatUnits renders a raw token amount as a decimal string with two
// fractional digits.
func formatUnits(value *big.Int, decimals int) string {
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Rat).SetFrac(value, divisor).FloatString(2)
}
