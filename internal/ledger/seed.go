package ledger

import "time"

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// seedEvents is the demo history, oldest first.
func seedEvents() []Event {
	return []Event{
		{
			ID:        "seed-escrow-released",
			Type:      TypeEscrowReleased,
			Timestamp: mustTime("2026-02-12T16:30:00Z"),
			Hash:      "0xbe7f...d35i",
			FullHash:  "0xbe7f2a6b5c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8d35i2",
			Contract:  contracts[TypeEscrowReleased],
			Status:    StatusConfirmed,
			Metadata: map[string]interface{}{
				"supplier": "0xC3D4...5678", "amount": "32,000 USDC", "deliveryVerified": true, "qualityScore": 96,
			},
		},
		{
			ID:        "seed-inventory-upload",
			Type:      TypeDataUpload,
			Timestamp: mustTime("2026-02-12T14:15:00Z"),
			Hash:      "0xcf8a...e46j",
			FullHash:  "0xcf8a3b7c6d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8e46j3",
			Contract:  contracts[TypeDataUpload],
			Status:    StatusConfirmed,
			Metadata: map[string]interface{}{
				"dataType": "inventory_snapshot", "records": 8750, "region": "Karnataka", "uploadedBy": "0xA1B2...C3D4",
			},
		},
		{
			ID:        "seed-sales-upload",
			Type:      TypeDataUpload,
			Timestamp: mustTime("2026-02-13T10:24:00Z"),
			Hash:      "0x7a3b...f91e",
			FullHash:  "0x7a3b8c2d1e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f91e",
			Contract:  contracts[TypeDataUpload],
			Status:    StatusConfirmed,
			Metadata: map[string]interface{}{
				"dataType": "sales_records", "records": 15420, "region": "Maharashtra", "uploadedBy": "0xA1B2...C3D4",
			},
		},
		{
			ID:        "seed-simulation",
			Type:      TypeSimulationStored,
			Timestamp: mustTime("2026-02-13T10:30:00Z"),
			Hash:      "0x8b4c...a02f",
			FullHash:  "0x8b4c9d3e2f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8a02f",
			Contract:  contracts[TypeSimulationStored],
			Status:    StatusConfirmed,
			Metadata: map[string]interface{}{
				"simulationType": "price_optimization", "confidence": 0.94, "scenarios": 1200, "duration": "34s",
			},
		},
		{
			ID:        "seed-credit-score",
			Type:      TypeCreditScore,
			Timestamp: mustTime("2026-02-13T10:45:00Z"),
			Hash:      "0x9c5d...b13g",
			FullHash:  "0x9c5d0e4f3a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8b13g0",
			Contract:  contracts[TypeCreditScore],
			Status:    StatusConfirmed,
			Metadata: map[string]interface{}{
				"previousScore": 812, "newScore": 847, "factors": []string{"fulfillment_rate", "revenue_trend", "payment_history"},
			},
		},
		{
			ID:        "seed-escrow-created",
			Type:      TypeEscrowCreated,
			Timestamp: mustTime("2026-02-13T11:00:00Z"),
			Hash:      "0xad6e...c24h",
			FullHash:  "0xad6e1f5a4b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8c24h1",
			Contract:  contracts[TypeEscrowCreated],
			Status:    StatusPending,
			Metadata: map[string]interface{}{
				"supplier": "0xE5F6...7890", "amount": "45,000 USDC", "terms": "30-day delivery", "collateral": "5,000 USDC",
			},
		},
	}
}
