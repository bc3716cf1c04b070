// Package pb encodes record bodies in protobuf wire format.
//
//	message Coordinate { sint64 x = 1; sint64 y = 2; }
//	message Route      { repeated Coordinate steps = 1; }
//	message Routes     { repeated Route routes = 1; }
//	message Scan       { uint32 current = 1; uint32 up = 2; uint32 down = 3;
//	                     uint32 left = 4; uint32 right = 5; Coordinate coordinate = 6; }
//	message Action     { uint32 action = 1; }
package pb

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/beka-birhanu/vinom-pathfinder/protocol"
	"github.com/beka-birhanu/vinom-pathfinder/route"
	"google.golang.org/protobuf/encoding/protowire"
)

var _ protocol.Encoder = &Protobuf{}

var ErrInvalidAdjacency = errors.New("invalid adjacency")

const (
	coordinateX protowire.Number = 1
	coordinateY protowire.Number = 2

	routeSteps  protowire.Number = 1
	routesItems protowire.Number = 1

	scanCurrent    protowire.Number = 1
	scanUp         protowire.Number = 2
	scanDown       protowire.Number = 3
	scanLeft       protowire.Number = 4
	scanRight      protowire.Number = 5
	scanCoordinate protowire.Number = 6

	actionValue protowire.Number = 1
)

// scanFields maps each direction to its field number.
var scanFields = [...]protowire.Number{
	lake.Up:    scanUp,
	lake.Down:  scanDown,
	lake.Left:  scanLeft,
	lake.Right: scanRight,
}

type Protobuf struct{}

// MarshalRoutes implements protocol.Encoder.
func (p *Protobuf) MarshalRoutes(routes []route.Route) ([]byte, error) {
	var b []byte
	for _, r := range routes {
		b = protowire.AppendTag(b, routesItems, protowire.BytesType)
		b = protowire.AppendBytes(b, appendRoute(nil, r))
	}
	return b, nil
}

// UnmarshalRoutes implements protocol.Encoder.
func (p *Protobuf) UnmarshalRoutes(b []byte) ([]route.Route, error) {
	routes := []route.Route{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != routesItems || typ != protowire.BytesType {
			return skip(num, typ, b)
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return n, nil
		}
		r, err := consumeRoute(v)
		if err != nil {
			return 0, err
		}
		routes = append(routes, r)
		return n, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal routes: %w", err)
	}
	return routes, nil
}

// MarshalScan implements protocol.Encoder.
func (p *Protobuf) MarshalScan(s lake.Scan) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, scanCurrent, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.Current))
	for _, d := range lake.Directions {
		b = protowire.AppendTag(b, scanFields[d], protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(s.Surroundings[d]))
	}
	b = protowire.AppendTag(b, scanCoordinate, protowire.BytesType)
	b = protowire.AppendBytes(b, appendCoordinate(nil, s.Coordinate))
	return b, nil
}

// UnmarshalScan implements protocol.Encoder.
func (p *Protobuf) UnmarshalScan(b []byte) (lake.Scan, error) {
	var s lake.Scan
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == scanCoordinate && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			c, err := consumeCoordinate(v)
			if err != nil {
				return 0, err
			}
			s.Coordinate = c
			return n, nil
		case typ != protowire.VarintType:
			return skip(num, typ, b)
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return n, nil
		}
		if num == scanCurrent {
			t, err := lake.ParseTile(rune(v))
			if err != nil {
				return 0, err
			}
			s.Current = t
			return n, nil
		}
		for _, d := range lake.Directions {
			if scanFields[d] != num {
				continue
			}
			if v > uint64(lake.Blocked) {
				return 0, fmt.Errorf("%w: %d", ErrInvalidAdjacency, v)
			}
			s.Surroundings[d] = lake.Adjacency(v)
		}
		return n, nil
	})
	if err != nil {
		return lake.Scan{}, fmt.Errorf("unmarshal scan: %w", err)
	}
	if !s.Current.Valid() {
		return lake.Scan{}, fmt.Errorf("unmarshal scan: %w: missing current tile", lake.ErrInvalidTile)
	}
	return s, nil
}

// MarshalAction implements protocol.Encoder.
func (p *Protobuf) MarshalAction(a lake.Action) ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", lake.ErrInvalidAction, a)
	}
	b := protowire.AppendTag(nil, actionValue, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(a)), nil
}

// UnmarshalAction implements protocol.Encoder.
func (p *Protobuf) UnmarshalAction(b []byte) (lake.Action, error) {
	var a lake.Action
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != actionValue || typ != protowire.VarintType {
			return skip(num, typ, b)
		}
		v, n := protowire.ConsumeVarint(b)
		if n >= 0 {
			a = lake.Action(v)
			if v > uint64(lake.ActionUp) {
				return 0, fmt.Errorf("%w: %d", lake.ErrInvalidAction, v)
			}
		}
		return n, nil
	})
	if err != nil {
		return 0, fmt.Errorf("unmarshal action: %w", err)
	}
	return a, nil
}

func appendCoordinate(b []byte, c lake.Coordinate) []byte {
	b = protowire.AppendTag(b, coordinateX, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(c.X)))
	b = protowire.AppendTag(b, coordinateY, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(c.Y)))
}

func consumeCoordinate(b []byte) (lake.Coordinate, error) {
	var c lake.Coordinate
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType || (num != coordinateX && num != coordinateY) {
			return skip(num, typ, b)
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return n, nil
		}
		if num == coordinateX {
			c.X = int(protowire.DecodeZigZag(v))
		} else {
			c.Y = int(protowire.DecodeZigZag(v))
		}
		return n, nil
	})
	return c, err
}

func appendRoute(b []byte, r route.Route) []byte {
	for _, c := range r {
		b = protowire.AppendTag(b, routeSteps, protowire.BytesType)
		b = protowire.AppendBytes(b, appendCoordinate(nil, c))
	}
	return b
}

func consumeRoute(b []byte) (route.Route, error) {
	var steps []lake.Coordinate
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != routeSteps || typ != protowire.BytesType {
			return skip(num, typ, b)
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return n, nil
		}
		c, err := consumeCoordinate(v)
		if err != nil {
			return 0, err
		}
		steps = append(steps, c)
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return route.New(steps)
}

// walk calls field for every field in b. field returns how many bytes of the
// value it consumed, negative on a wire error.
func walk(b []byte, field func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

// skip consumes a field this decoder does not know.
func skip(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	return protowire.ConsumeFieldValue(num, typ, b), nil
}
