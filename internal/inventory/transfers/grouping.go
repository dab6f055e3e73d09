package transfers

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"fieldstock/pkg/metadata"
	"fieldstock/pkg/models"
)

// DefaultLegacyWindow is the bucket width used to group transfer rows that
// predate the request_id column.
const DefaultLegacyWindow = 10 * time.Second

const legacyKeyPrefix = "legacy:"

// GroupKey returns the batch key of a transfer row: the request id when the
// row has one, otherwise a key synthesized from the row's owner, warehouse,
// creation bucket, status and notes.
func GroupKey(t models.WarehouseTransfer, window time.Duration) string {
	if t.RequestID != nil {
		return strconv.FormatInt(*t.RequestID, 10)
	}
	return legacyGroupKey(t, window)
}

func legacyGroupKey(t models.WarehouseTransfer, window time.Duration) string {
	if window <= 0 {
		window = DefaultLegacyWindow
	}
	bucket := t.CreatedAt.UnixNano() / int64(window)
	notes := ""
	if t.Notes != nil {
		notes = *t.Notes
	}
	return fmt.Sprintf("%s%d:%d:%d:%s:%s", legacyKeyPrefix, t.TechnicianID, t.WarehouseID, bucket, t.Status, notes)
}

// BatchStatus is pending only if every member is pending. A group whose
// members disagree reports mixed.
func BatchStatus(members []models.WarehouseTransfer) metadata.TransferStatus {
	if len(members) == 0 {
		return metadata.TransferPending
	}
	status := members[0].Status
	for _, m := range members[1:] {
		if m.Status != status {
			return metadata.TransferMixed
		}
	}
	return status
}

// Group partitions transfer rows into batches, newest first.
func Group(rows []models.WarehouseTransfer, window time.Duration) []models.TransferBatch {
	byKey := map[string]*models.TransferBatch{}
	order := make([]string, 0)

	for _, row := range rows {
		key := GroupKey(row, window)
		batch, ok := byKey[key]
		if !ok {
			batch = &models.TransferBatch{
				Key:          key,
				RequestID:    row.RequestID,
				TechnicianID: row.TechnicianID,
				WarehouseID:  row.WarehouseID,
				Legacy:       row.RequestID == nil,
				CreatedAt:    row.CreatedAt,
			}
			byKey[key] = batch
			order = append(order, key)
		}
		batch.Transfers = append(batch.Transfers, row)
		if row.CreatedAt.Before(batch.CreatedAt) {
			batch.CreatedAt = row.CreatedAt
		}
	}

	batches := make([]models.TransferBatch, 0, len(order))
	for _, key := range order {
		batch := byKey[key]
		sort.Slice(batch.Transfers, func(i, j int) bool { return batch.Transfers[i].ID < batch.Transfers[j].ID })
		batch.Status = BatchStatus(batch.Transfers)
		batches = append(batches, *batch)
	}

	sort.SliceStable(batches, func(i, j int) bool {
		if !batches[i].CreatedAt.Equal(batches[j].CreatedAt) {
			return batches[i].CreatedAt.After(batches[j].CreatedAt)
		}
		return batches[i].Key < batches[j].Key
	})

	return batches
}
