package metadata

import "fmt"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

func NewRequestStatus(value string) (RequestStatus, error) {
	status := RequestStatus(value)
	switch status {
	case RequestPending, RequestApproved, RequestRejected:
		return status, nil
	default:
		return "", fmt.Errorf("invalid request status: %s", value)
	}
}

func (s RequestStatus) IsTerminal() bool {
	return s == RequestApproved || s == RequestRejected
}

type TransferStatus string

const (
	TransferPending  TransferStatus = "pending"
	TransferAccepted TransferStatus = "accepted"
	TransferRejected TransferStatus = "rejected"
	// TransferMixed is only ever reported for a batch, never stored on a row.
	TransferMixed TransferStatus = "mixed"
)

func NewTransferStatus(value string) (TransferStatus, error) {
	status := TransferStatus(value)
	switch status {
	case TransferPending, TransferAccepted, TransferRejected:
		return status, nil
	default:
		return "", fmt.Errorf("invalid transfer status: %s", value)
	}
}

func (s TransferStatus) IsTerminal() bool {
	return s == TransferAccepted || s == TransferRejected
}
