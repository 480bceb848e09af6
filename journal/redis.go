package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rustyeddy/tracker/portfolio"
	"go.uber.org/zap"
)

// Redis keeps documents in a shared Redis so several devices see the same
// portfolios. Writes are announced on a per-user pub/sub channel.
//
//	{prefix}:{user}:portfolio:{id}   document JSON
//	{prefix}:{user}:portfolios       sorted set of ids, scored by creation time
//	{prefix}:{user}:changes          change notices
type Redis struct {
	client redis.UniversalClient
	opt    options
}

var _ Journal = (*Redis)(nil)

type notice struct {
	Kind        Kind   `json:"kind"`
	PortfolioID string `json:"portfolioId"`
	Origin      string `json:"origin"`
}

func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	return &Redis{client: client, opt: buildOptions(opts)}
}

// DialRedis connects and pings a single Redis server.
func DialRedis(ctx context.Context, opt *redis.Options, opts ...Option) (*Redis, error) {
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opt.Addr, err)
	}
	return NewRedis(client, opts...), nil
}

func (r *Redis) docKey(userID, portfolioID string) string {
	return fmt.Sprintf("%s:%s:portfolio:%s", r.opt.prefix, userID, portfolioID)
}

func (r *Redis) indexKey(userID string) string {
	return fmt.Sprintf("%s:%s:portfolios", r.opt.prefix, userID)
}

func (r *Redis) channel(userID string) string {
	return fmt.Sprintf("%s:%s:changes", r.opt.prefix, userID)
}

func (r *Redis) Save(ctx context.Context, userID string, p portfolio.Portfolio) error {
	data, err := portfolio.Encode(p)
	if err != nil {
		return fmt.Errorf("save portfolio %q: %w", p.ID, err)
	}
	msg, err := json.Marshal(notice{Kind: Saved, PortfolioID: p.ID, Origin: r.opt.origin})
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.docKey(userID, p.ID), data, 0)
	pipe.ZAddNX(ctx, r.indexKey(userID), redis.Z{Score: float64(time.Now().UnixMilli()), Member: p.ID})
	pipe.Publish(ctx, r.channel(userID), msg)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save portfolio %q: %w", p.ID, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, userID, portfolioID string) error {
	msg, err := json.Marshal(notice{Kind: Deleted, PortfolioID: portfolioID, Origin: r.opt.origin})
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.docKey(userID, portfolioID))
	pipe.ZRem(ctx, r.indexKey(userID), portfolioID)
	pipe.Publish(ctx, r.channel(userID), msg)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete portfolio %q: %w", portfolioID, err)
	}
	return nil
}

func (r *Redis) LoadAll(ctx context.Context, userID string) ([]portfolio.Portfolio, error) {
	ids, err := r.client.ZRange(ctx, r.indexKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load portfolios: %w", err)
	}
	if len(ids) == 0 {
		return []portfolio.Portfolio{}, nil
	}

	keys := make([]string, len(ids))
	for i, pid := range ids {
		keys[i] = r.docKey(userID, pid)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load portfolios: %w", err)
	}

	raws := make([]rawDoc, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// indexed but the document is gone
			continue
		}
		raws = append(raws, rawDoc{id: ids[i], data: []byte(s)})
	}

	out, migrated := decodeAll(r.opt.log, userID, raws)
	writeBack(ctx, r, r.opt.log, userID, migrated)
	return out, nil
}

func (r *Redis) load(ctx context.Context, userID, portfolioID string) (portfolio.Portfolio, bool, error) {
	data, err := r.client.Get(ctx, r.docKey(userID, portfolioID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return portfolio.Portfolio{}, false, nil
	}
	if err != nil {
		return portfolio.Portfolio{}, false, err
	}
	p, _, err := portfolio.Decode(data)
	if err != nil {
		return portfolio.Portfolio{}, false, err
	}
	return p, true, nil
}

func (r *Redis) Watch(ctx context.Context, userID string) (<-chan Change, error) {
	sub := r.client.Subscribe(ctx, r.channel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("watch portfolios: %w", err)
	}

	ch := make(chan Change)
	go func() {
		defer close(ch)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			var msg *redis.Message
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				msg = m
			}

			c, ok := r.change(ctx, userID, msg.Payload)
			if !ok {
				continue
			}
			select {
			case ch <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// change resolves a notice into a Change. Own notices and saves whose
// document has since disappeared are dropped.
func (r *Redis) change(ctx context.Context, userID, payload string) (Change, bool) {
	var n notice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		r.opt.log.Warn("bad change notice", zap.String("user", userID), zap.Error(err))
		return Change{}, false
	}
	if n.Origin == r.opt.origin {
		return Change{}, false
	}

	c := Change{Kind: n.Kind, PortfolioID: n.PortfolioID, Origin: n.Origin}
	if n.Kind != Saved {
		return c, true
	}

	p, ok, err := r.load(ctx, userID, n.PortfolioID)
	if err != nil {
		r.opt.log.Warn("load changed portfolio",
			zap.String("user", userID),
			zap.String("portfolio", n.PortfolioID),
			zap.Error(err))
		return Change{}, false
	}
	if !ok {
		return Change{}, false
	}
	c.Portfolio = p
	return c, true
}

func (r *Redis) Close() error {
	return r.client.Close()
}
