// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package testlib

import (
	"math/rand"

	"github.com/sqreen/go-dxvahook/abi"
)

func RandString(size ...int) string {
	letterRunes := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

	var n int
	if len(size) == 1 {
		n = size[0]
	} else {
		from := size[0]
		to := size[1]
		n = from + rand.Intn(to-from)
	}
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rand.Intn(len(letterRunes))]
	}
	return string(b)
}

func RandUint32(boundaries ...uint32) uint32 {
	rand := rand.Uint32()

	switch len(boundaries) {
	case 0:
		return rand

	case 1:
		// At least
		return boundaries[0] + rand

	case 2:
		// Between boundaries
		min := boundaries[0]
		max := boundaries[1]
		return min + (rand % (max - min))

	default:
		panic("unexpected arguments")
	}
}

// RandBytes returns n random bytes.
func RandBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

// RandGUID returns a random GUID, which can be assumed to be none of the
// well-known identifiers.
func RandGUID() abi.GUID {
	g := abi.GUID{
		Data1: rand.Uint32(),
		Data2: uint16(rand.Uint32()),
		Data3: uint16(rand.Uint32()),
	}
	rand.Read(g.Data4[:])
	return g
}

// RandReferenceTime returns a random positive media time.
func RandReferenceTime() abi.ReferenceTime {
	return abi.ReferenceTime(rand.Int63())
}
