// Package protocol carries the records exchanged between the explorer, the
// driver and the executor. Every channel is ordered, reliable and strictly
// alternating: each Receive on one side matches exactly one Send on the
// other.
package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/beka-birhanu/vinom-pathfinder/route"
)

// Custom error types
var (
	ErrProtocolViolation = errors.New("protocol violation")
	ErrDisconnected      = errors.New("peer disconnected")
	ErrRecordTooLarge    = errors.New("record body exceeds size limit")
	ErrInvalidRecordType = errors.New("invalid record type")
)

// RecordType identifies a record on the wire.
type RecordType byte

const (
	StartRecordType RecordType = iota + 1
	EndRecordType
	RoutesRecordType
	MoreScansRecordType
	ScanRecordType
	NoMoreScansRecordType
	ActionRecordType
	ScanStartRecordType
	PathNotTerminatedRecordType
	PathTerminatedRecordType
	NotDoneRecordType
	DoneRecordType
	SuccessRecordType
	FailureRecordType
)

var recordNames = [...]string{
	StartRecordType:             "start",
	EndRecordType:               "end",
	RoutesRecordType:            "routes",
	MoreScansRecordType:         "more_scans",
	ScanRecordType:              "scan",
	NoMoreScansRecordType:       "no_more_scans",
	ActionRecordType:            "action",
	ScanStartRecordType:         "scan_start",
	PathNotTerminatedRecordType: "path_not_terminated",
	PathTerminatedRecordType:    "path_terminated",
	NotDoneRecordType:           "not_done",
	DoneRecordType:              "done",
	SuccessRecordType:           "success",
	FailureRecordType:           "failure",
}

// Valid reports whether t is a known record type.
func (t RecordType) Valid() bool {
	return t >= StartRecordType && t <= FailureRecordType
}

func (t RecordType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("RecordType(%d)", byte(t))
	}
	return recordNames[t]
}

// Record is a typed message. Signal records carry no body.
type Record struct {
	Type RecordType
	Body []byte
}

// Conn is one end of a point-to-point channel between two roles.
type Conn interface {
	Send(ctx context.Context, r Record) error
	Receive(ctx context.Context) (Record, error)
	Close() error
}

// Encoder marshals the record bodies that carry data.
type Encoder interface {
	MarshalRoutes([]route.Route) ([]byte, error)
	UnmarshalRoutes([]byte) ([]route.Route, error)
	MarshalScan(lake.Scan) ([]byte, error)
	UnmarshalScan([]byte) (lake.Scan, error)
	MarshalAction(lake.Action) ([]byte, error)
	UnmarshalAction([]byte) (lake.Action, error)
}

// Signal sends a record with no body.
func Signal(ctx context.Context, c Conn, t RecordType) error {
	return c.Send(ctx, Record{Type: t})
}

// Expect receives the next record and fails with ErrProtocolViolation unless
// its type is one of want.
func Expect(ctx context.Context, c Conn, want ...RecordType) (Record, error) {
	r, err := c.Receive(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, t := range want {
		if r.Type == t {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: expected %v, received %s", ErrProtocolViolation, want, r.Type)
}
