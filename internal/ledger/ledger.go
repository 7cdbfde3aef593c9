// Package ledger keeps an append-only log of simulated on-chain events.
//
// Nothing here talks to a blockchain. Transaction hashes are random bytes
// rendered like EVM hashes, and the log is summarised by a SHA-256 Merkle
// root over those hashes so the dashboard has something to "verify".
package ledger

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types recorded by the API.
const (
	TypeDataUpload       = "Data Upload Logged"
	TypeSimulationStored = "Simulation Hash Stored"
	TypeCreditScore      = "Credit Score Updated"
	TypeEscrowCreated    = "Escrow Contract Created"
	TypeEscrowReleased   = "Escrow Released"
	TypeAutopilot        = "Autopilot Actions Executed"
)

const (
	StatusConfirmed = "Confirmed"
	StatusPending   = "Pending"
)

// contracts maps event types to the (fake) contract that would emit them.
var contracts = map[string]string{
	TypeDataUpload:       "0x1234...5678",
	TypeSimulationStored: "0x1234...5678",
	TypeCreditScore:      "0x5678...9ABC",
	TypeEscrowCreated:    "0x9ABC...DEF0",
	TypeEscrowReleased:   "0x9ABC...DEF0",
	TypeAutopilot:        "0xDEF0...1234",
}

// Event is one entry in the log.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Hash      string                 `json:"hash"`
	FullHash  string                 `json:"fullHash"`
	Contract  string                 `json:"contract"`
	Status    string                 `json:"status"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// Ledger maintains the event log and its Merkle leaves.
type Ledger struct {
	mu     sync.Mutex
	events []Event
	leaves []*merkleNode
	root   string
	now    func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// NewSeededLedger returns a Ledger preloaded with the dashboard's demo history.
func NewSeededLedger() *Ledger {
	l := NewLedger()
	for _, e := range seedEvents() {
		l.append(e)
	}
	return l
}

// Record appends a confirmed event of the given type with a fresh random hash.
func (l *Ledger) Record(eventType string, metadata map[string]interface{}) (Event, error) {
	full, err := RandomTxHash()
	if err != nil {
		return Event{}, fmt.Errorf("generate tx hash: %w", err)
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	contract, ok := contracts[eventType]
	if !ok {
		contract = "0x0000...0000"
	}

	e := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: l.now().UTC().Truncate(time.Second),
		Hash:      ShortHash(full),
		FullHash:  full,
		Contract:  contract,
		Status:    StatusConfirmed,
		Metadata:  metadata,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.append(e)
	return e, nil
}

// append adds e and recalculates the root. Callers hold l.mu, except during
// construction.
func (l *Ledger) append(e Event) {
	l.events = append(l.events, e)
	l.leaves = append(l.leaves, &merkleNode{Hash: hashData(e.FullHash)})
	l.root = merkleRoot(l.leaves)
}

// List returns events newest first.
func (l *Ledger) List() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Event, len(l.events))
	for i, e := range l.events {
		out[len(l.events)-1-i] = e
	}
	return out
}

// Root returns the current Merkle root, "" for an empty ledger.
func (l *Ledger) Root() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.root
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// RandomTxHash returns "0x" followed by 64 random hex characters.
func RandomTxHash() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}

// ShortHash abbreviates a 0x hash to 0xabcd...wxyz.
func ShortHash(full string) string {
	if len(full) <= 14 {
		return full
	}
	return full[:6] + "..." + full[len(full)-4:]
}
