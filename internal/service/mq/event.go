package mq

import (
	"encoding/json"
	"time"

	"tangle-wallet/pkg/tangle"
)

// EventAddressUsed 同步发现已使用地址时发出
const EventAddressUsed = "address_used"

// AddressUsedEvent 事件体
type AddressUsedEvent struct {
	Type            string        `json:"type"`
	SeedFingerprint string        `json:"seed_fingerprint"`
	Address         tangle.Hash   `json:"address"`
	Index           int           `json:"index"`
	SecurityLevel   int           `json:"security_level"`
	TxCount         int           `json:"tx_count"`
	Hashes          []tangle.Hash `json:"hashes"`
	OccurredAt      time.Time     `json:"occurred_at"`
}

func NewAddressUsedEvent(fingerprint string, result tangle.ScanResult, at time.Time) AddressUsedEvent {
	hashes := result.Hashes
	if hashes == nil {
		hashes = []tangle.Hash{}
	}
	return AddressUsedEvent{
		Type:            EventAddressUsed,
		SeedFingerprint: fingerprint,
		Address:         result.Address.Hash,
		Index:           result.Address.Index,
		SecurityLevel:   result.Address.SecurityLevel,
		TxCount:         len(result.Hashes),
		Hashes:          hashes,
		OccurredAt:      at.UTC(),
	}
}

func (e AddressUsedEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeAddressUsedEvent 消费端解码
func DecodeAddressUsedEvent(payload []byte) (AddressUsedEvent, error) {
	var e AddressUsedEvent
	err := json.Unmarshal(payload, &e)
	return e, err
}
