package portfolio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tracker/pkg/id"
	"github.com/shopspring/decimal"
)

// SchemaVersion is the document shape written by Encode.
//
//	0  single portfolio with a scalar "target" amount, no version field
//	1  "targets" ladder
//	2  closed trades always carry closeDate; asset names uppercased
const SchemaVersion = 2

// Defaults applied when a stored document lacks the field.
const (
	DefaultPortfolioName = "My Portfolio"
	DefaultCurrency      = "USD"
	DefaultTargetName    = "Initial Target"
	legacyTargetID       = "default_target"
)

// flexString accepts a JSON string or number. Early documents used numeric
// timestamps as IDs.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

type document struct {
	SchemaVersion  int              `json:"schemaVersion,omitempty"`
	ID             flexString       `json:"id"`
	PortfolioName  string           `json:"portfolioName"`
	InitialCapital decimal.Decimal  `json:"initialCapital"`
	Currency       string           `json:"currency"`
	Target         *decimal.Decimal `json:"target,omitempty"`
	Targets        json.RawMessage  `json:"targets"`
	Trades         json.RawMessage  `json:"trades"`
	Version        int64            `json:"version,omitempty"`
	UpdatedAt      int64            `json:"updatedAt,omitempty"`

	targets []docTarget
	trades  []docTrade
}

type docTarget struct {
	ID     flexString      `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type docTrade struct {
	ID                 flexString      `json:"id"`
	AssetName          string          `json:"assetName"`
	EntryPrice         decimal.Decimal `json:"entryPrice"`
	TradeValue         decimal.Decimal `json:"tradeValue"`
	TakeProfitPrice    decimal.Decimal `json:"takeProfitPrice"`
	StopLossPrice      decimal.Decimal `json:"stopLossPrice"`
	TakeProfit         decimal.Decimal `json:"takeProfit"`
	StopLoss           decimal.Decimal `json:"stopLoss"`
	Status             string          `json:"status"`
	PnL                decimal.Decimal `json:"pnl"`
	CapitalBeforeTrade decimal.Decimal `json:"capitalBeforeTrade"`
	OpenDate           *int64          `json:"openDate,omitempty"`
	CloseDate          *int64          `json:"closeDate,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// upgrades[v] lifts a version v document to version v+1.
var upgrades = []func(document) document{
	upgradeV0,
	upgradeV1,
}

// Decode parses a stored portfolio document of any known schema version and
// returns it in the current shape. migrated is true when the stored bytes
// differ from what Encode would write, so the caller should write it back.
func Decode(data []byte) (p Portfolio, migrated bool, err error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Portfolio{}, false, fmt.Errorf("decode portfolio: %w", err)
	}
	if doc.SchemaVersion > SchemaVersion {
		return Portfolio{}, false, fmt.Errorf("decode portfolio: schema version %d is newer than %d", doc.SchemaVersion, SchemaVersion)
	}

	doc, healed, err := heal(doc)
	if err != nil {
		return Portfolio{}, false, fmt.Errorf("decode portfolio %q: %w", doc.ID, err)
	}
	migrated = healed

	for v := doc.SchemaVersion; v < SchemaVersion; v++ {
		doc = upgrades[v](doc)
		migrated = true
	}
	doc.SchemaVersion = SchemaVersion

	return doc.portfolio(), migrated, nil
}

// DecodeAll accepts either one document or a JSON array of documents, the
// two shapes older exports used.
func DecodeAll(data []byte) (out []Portfolio, migrated bool, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		p, m, err := Decode(data)
		if err != nil {
			return nil, false, err
		}
		return []Portfolio{p}, m, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, false, fmt.Errorf("decode portfolios: %w", err)
	}
	for i, raw := range raws {
		p, m, err := Decode(raw)
		if err != nil {
			return nil, false, fmt.Errorf("portfolio #%d: %w", i, err)
		}
		migrated = migrated || m
		out = append(out, p)
	}
	return out, migrated, nil
}

// heal repairs structure every version may have lost: missing identity,
// blank name or currency, and array fields stored as null or another type.
func heal(doc document) (document, bool, error) {
	healed := false
	if doc.ID == "" {
		doc.ID = flexString(id.New())
		healed = true
	}
	if strings.TrimSpace(doc.PortfolioName) == "" {
		doc.PortfolioName = DefaultPortfolioName
		healed = true
	}
	if strings.TrimSpace(doc.Currency) == "" {
		doc.Currency = DefaultCurrency
		healed = true
	}

	var ok bool
	var err error
	if doc.targets, ok, err = decodeArray[docTarget](doc.Targets); err != nil {
		return doc, false, fmt.Errorf("targets: %w", err)
	} else if !ok {
		healed = true
	}
	if doc.trades, ok, err = decodeArray[docTrade](doc.Trades); err != nil {
		return doc, false, fmt.Errorf("trades: %w", err)
	} else if !ok {
		healed = true
	}

	trades := make([]docTrade, len(doc.trades))
	for i, t := range doc.trades {
		if t.Status != string(StatusClosed) && t.Status != string(StatusOpen) {
			t.Status = string(StatusOpen)
			healed = true
		}
		if t.ID == "" {
			t.ID = flexString(id.New())
			healed = true
		}
		trades[i] = t
	}
	doc.trades = trades
	return doc, healed, nil
}

// decodeArray decodes raw when it is a JSON array. ok is false when raw was
// absent, null or not an array, in which case an empty slice is returned.
func decodeArray[T any](raw json.RawMessage) (out []T, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return []T{}, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, err
	}
	if out == nil {
		out = []T{}
	}
	return out, true, nil
}

// upgradeV0 turns the scalar target of the first release into a ladder.
func upgradeV0(doc document) document {
	if doc.Target != nil && len(doc.targets) == 0 {
		doc.targets = []docTarget{{
			ID:     legacyTargetID,
			Name:   DefaultTargetName,
			Amount: *doc.Target,
		}}
	}
	doc.Target = nil
	doc.SchemaVersion = 1
	return doc
}

// upgradeV1 guarantees every closed trade has a close date so statistics
// never have to guess one, and uppercases asset labels.
func upgradeV1(doc document) document {
	trades := make([]docTrade, len(doc.trades))
	for i, t := range doc.trades {
		t.AssetName = NormalizeAsset(t.AssetName)
		if t.Status == string(StatusClosed) && t.CloseDate == nil {
			if at, ok := id.Time(string(t.ID)); ok {
				ms := at.UnixMilli()
				t.CloseDate = &ms
			} else if t.OpenDate != nil {
				ms := *t.OpenDate
				t.CloseDate = &ms
			}
		}
		trades[i] = t
	}
	doc.trades = trades
	doc.SchemaVersion = 2
	return doc
}

func (doc document) portfolio() Portfolio {
	p := Portfolio{
		ID:             string(doc.ID),
		Name:           doc.PortfolioName,
		InitialCapital: doc.InitialCapital,
		Currency:       doc.Currency,
		Targets:        make([]Target, 0, len(doc.targets)),
		Trades:         make([]Trade, 0, len(doc.trades)),
		Version:        doc.Version,
		UpdatedAt:      fromMillis(&doc.UpdatedAt),
	}
	for _, t := range doc.targets {
		p.Targets = append(p.Targets, Target{ID: string(t.ID), Name: t.Name, Amount: t.Amount})
	}
	for _, t := range doc.trades {
		p.Trades = append(p.Trades, Trade{
			ID:                 string(t.ID),
			AssetName:          t.AssetName,
			EntryPrice:         t.EntryPrice,
			TradeValue:         t.TradeValue,
			TakeProfitPrice:    t.TakeProfitPrice,
			StopLossPrice:      t.StopLossPrice,
			TakeProfit:         t.TakeProfit,
			StopLoss:           t.StopLoss,
			Status:             Status(t.Status),
			PnL:                t.PnL,
			CapitalBeforeTrade: t.CapitalBeforeTrade,
			OpenDate:           fromMillis(t.OpenDate),
			CloseDate:          fromMillis(t.CloseDate),
			Notes:              t.Notes,
		})
	}
	return p
}

// Encode writes p in the current schema version.
func Encode(p Portfolio) ([]byte, error) {
	doc := struct {
		SchemaVersion  int             `json:"schemaVersion"`
		ID             string          `json:"id"`
		PortfolioName  string          `json:"portfolioName"`
		InitialCapital decimal.Decimal `json:"initialCapital"`
		Currency       string          `json:"currency"`
		Targets        []docTarget     `json:"targets"`
		Trades         []docTrade      `json:"trades"`
		Version        int64           `json:"version"`
		UpdatedAt      int64           `json:"updatedAt,omitempty"`
	}{
		SchemaVersion:  SchemaVersion,
		ID:             p.ID,
		PortfolioName:  p.Name,
		InitialCapital: p.InitialCapital,
		Currency:       p.Currency,
		Targets:        make([]docTarget, 0, len(p.Targets)),
		Trades:         make([]docTrade, 0, len(p.Trades)),
		Version:        p.Version,
	}
	if !p.UpdatedAt.IsZero() {
		doc.UpdatedAt = p.UpdatedAt.UnixMilli()
	}
	for _, t := range p.Targets {
		doc.Targets = append(doc.Targets, docTarget{ID: flexString(t.ID), Name: t.Name, Amount: t.Amount})
	}
	for _, t := range p.Trades {
		doc.Trades = append(doc.Trades, docTrade{
			ID:                 flexString(t.ID),
			AssetName:          t.AssetName,
			EntryPrice:         t.EntryPrice,
			TradeValue:         t.TradeValue,
			TakeProfitPrice:    t.TakeProfitPrice,
			StopLossPrice:      t.StopLossPrice,
			TakeProfit:         t.TakeProfit,
			StopLoss:           t.StopLoss,
			Status:             string(t.Status),
			PnL:                t.PnL,
			CapitalBeforeTrade: t.CapitalBeforeTrade,
			OpenDate:           toMillis(t.OpenDate),
			CloseDate:          toMillis(t.CloseDate),
			Notes:              t.Notes,
		})
	}
	return json.Marshal(doc)
}

func fromMillis(ms *int64) time.Time {
	if ms == nil || *ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(*ms).UTC()
}

func toMillis(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
