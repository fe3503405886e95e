// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"

	"github.com/ava-labs/avalanchego/ids"
)

const AddressLen = 33

// Address identifies a principal (or a derived record): a one byte type ID
// followed by a 32 byte identifier.
type Address [AddressLen]byte

var EmptyAddress = Address{}

// CreateAddress returns [Address] made from concatenating
// [typeID] with [id].
func CreateAddress(typeID uint8, id ids.ID) Address {
	var a Address
	a[0] = typeID
	copy(a[1:], id[:])
	return a
}

// TypeID returns the leading type byte of a.
func (a Address) TypeID() uint8 {
	return a[0]
}

// StringToAddress parses a hex encoded address, with or without the 0x
// prefix.
func StringToAddress(s string) (Address, error) {
	b, err := LoadHex(s, AddressLen)
	if err != nil {
		return EmptyAddress, err
	}
	return Address(b), nil
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText returns the hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a hex-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	addr, err := StringToAddress(string(input))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
