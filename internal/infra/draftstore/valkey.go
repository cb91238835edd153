package draftstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/meetmail/internal/domain/mailgen"
)

// ValkeyStore caches drafts and tone counters in a Valkey-compatible
// database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "mail"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Get implements mailgen.DraftStore.
func (s *ValkeyStore) Get(ctx context.Context, key uint64) (mailgen.Response, bool, error) {
	cmd := s.client.B().Get().Key(s.draftKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return mailgen.Response{}, false, nil
		}
		return mailgen.Response{}, false, err
	}
	var resp mailgen.Response
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return mailgen.Response{}, false, err
	}
	return resp, true, nil
}

// Save implements mailgen.DraftStore.
func (s *ValkeyStore) Save(ctx context.Context, key uint64, resp mailgen.Response, ttl time.Duration) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.draftKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

// IncrementTone implements mailgen.DraftStore.
func (s *ValkeyStore) IncrementTone(ctx context.Context, tone string) error {
	if tone == "" {
		return nil
	}
	cmd := s.client.B().Zincrby().Key(s.tonesKey()).Increment(1).Member(tone).Build()
	return s.client.Do(ctx, cmd).Error()
}

// TopTones implements mailgen.DraftStore.
func (s *ValkeyStore) TopTones(ctx context.Context, limit int) ([]mailgen.ToneCount, error) {
	if limit <= 0 {
		limit = 10
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.tonesKey()).Start(0).Stop(int64(limit-1)).Withscores().Build())
	arr, err := resp.ToArray()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]mailgen.ToneCount, 0, len(arr))
	for i := 0; i < len(arr); {
		var (
			member string
			score  float64
		)
		if tuple, tupleErr := arr[i].ToArray(); tupleErr == nil && len(tuple) == 2 {
			// RESP3 returns [member, score] per element.
			if member, err = tuple[0].ToString(); err != nil {
				return nil, err
			}
			if score, err = tuple[1].ToFloat64(); err != nil {
				return nil, err
			}
			i++
		} else {
			// RESP2 returns a flat alternating array.
			if i+1 >= len(arr) {
				break
			}
			if member, err = arr[i].ToString(); err != nil {
				return nil, err
			}
			if score, err = arr[i+1].ToFloat64(); err != nil {
				return nil, err
			}
			i += 2
		}
		out = append(out, mailgen.ToneCount{Tone: member, Count: int64(score)})
	}
	return out, nil
}

func (s *ValkeyStore) draftKey(key uint64) string {
	return fmt.Sprintf("%s:draft:%016x", s.prefix, key)
}

func (s *ValkeyStore) tonesKey() string {
	return s.prefix + ":tones"
}

var _ mailgen.DraftStore = (*ValkeyStore)(nil)
