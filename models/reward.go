package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrNoGrant is returned when encoding a reward whose Grant is nil.
var ErrNoGrant = errors.New("reward has no grant")

// RewardType tags the variant carried by a QuestReward
type RewardType string

const (
	RewardTypeToken       RewardType = "token"
	RewardTypeBadge       RewardType = "badge"
	RewardTypeRecognition RewardType = "recognition"
	RewardTypeNFT         RewardType = "nft"
)

// RewardGrant is the payload of a quest reward. The set of implementations is closed.
type RewardGrant interface {
	RewardType() RewardType
	isRewardGrant()
}

// TokenGrant pays an amount of a guild token
type TokenGrant struct {
	Amount  float64
	TokenID string
}

// BadgeGrant awards a badge
type BadgeGrant struct {
	BadgeID string
}

// RecognitionGrant is a public shout-out; it carries no payload
type RecognitionGrant struct{}

// NFTGrant transfers an NFT
type NFTGrant struct {
	NFTID string
}

func (TokenGrant) RewardType() RewardType       { return RewardTypeToken }
func (BadgeGrant) RewardType() RewardType       { return RewardTypeBadge }
func (RecognitionGrant) RewardType() RewardType { return RewardTypeRecognition }
func (NFTGrant) RewardType() RewardType         { return RewardTypeNFT }

func (TokenGrant) isRewardGrant()       {}
func (BadgeGrant) isRewardGrant()       {}
func (RecognitionGrant) isRewardGrant() {}
func (NFTGrant) isRewardGrant()         {}

// QuestReward is one distributed reward on a completed quest.
// On the wire it keeps the flat {"type": ..., "amount": ...} shape used by the fixtures.
type QuestReward struct {
	Grant         RewardGrant
	DistributedAt time.Time
	DistributedBy string
}

type rewardWire struct {
	Type          RewardType `json:"type"`
	Amount        *float64   `json:"amount,omitempty"`
	TokenID       string     `json:"tokenID,omitempty"`
	BadgeID       string     `json:"badgeID,omitempty"`
	NFTID         string     `json:"nftID,omitempty"`
	DistributedAt time.Time  `json:"distributedAt"`
	DistributedBy string     `json:"distributedBy"`
}

func (r QuestReward) MarshalJSON() ([]byte, error) {
	w := rewardWire{
		DistributedAt: r.DistributedAt,
		DistributedBy: r.DistributedBy,
	}
	switch g := r.Grant.(type) {
	case TokenGrant:
		amount := g.Amount
		w.Type = RewardTypeToken
		w.Amount = &amount
		w.TokenID = g.TokenID
	case BadgeGrant:
		w.Type = RewardTypeBadge
		w.BadgeID = g.BadgeID
	case RecognitionGrant:
		w.Type = RewardTypeRecognition
	case NFTGrant:
		w.Type = RewardTypeNFT
		w.NFTID = g.NFTID
	default:
		return nil, ErrNoGrant
	}
	return json.Marshal(w)
}

func (r *QuestReward) UnmarshalJSON(data []byte) error {
	var w rewardWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	// Checked in wire order so the reported field is stable.
	fields := []struct {
		name    string
		present bool
	}{
		{"amount", w.Amount != nil},
		{"tokenID", w.TokenID != ""},
		{"badgeID", w.BadgeID != ""},
		{"nftID", w.NFTID != ""},
	}
	foreign := func(allowed ...string) error {
		for _, f := range fields {
			if f.present && !slices.Contains(allowed, f.name) {
				return fmt.Errorf("%s reward cannot carry %s", w.Type, f.name)
			}
		}
		return nil
	}

	switch w.Type {
	case RewardTypeToken:
		if err := foreign("amount", "tokenID"); err != nil {
			return err
		}
		if w.Amount == nil {
			return fmt.Errorf("token reward requires amount")
		}
		r.Grant = TokenGrant{Amount: *w.Amount, TokenID: w.TokenID}
	case RewardTypeBadge:
		if err := foreign("badgeID"); err != nil {
			return err
		}
		if w.BadgeID == "" {
			return fmt.Errorf("badge reward requires badgeID")
		}
		r.Grant = BadgeGrant{BadgeID: w.BadgeID}
	case RewardTypeRecognition:
		if err := foreign(); err != nil {
			return err
		}
		r.Grant = RecognitionGrant{}
	case RewardTypeNFT:
		if err := foreign("nftID"); err != nil {
			return err
		}
		if w.NFTID == "" {
			return fmt.Errorf("nft reward requires nftID")
		}
		r.Grant = NFTGrant{NFTID: w.NFTID}
	default:
		return fmt.Errorf("unknown reward type %q", w.Type)
	}

	r.DistributedAt = w.DistributedAt
	r.DistributedBy = w.DistributedBy
	return nil
}
