// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package sqatomic

import "sync/atomic"

// AtomicInt32 is a wrapper type of an int32 providing convenience methods of
// commonly used atomic operations.
type AtomicInt32 int32

func (i *AtomicInt32) unwrap() *int32 { return (*int32)(i) }

func (i *AtomicInt32) Load() int32 {
	return atomic.LoadInt32(i.unwrap())
}

func (i *AtomicInt32) Store(v int32) {
	atomic.StoreInt32(i.unwrap(), v)
}

func (i *AtomicInt32) Increment() int32 {
	return atomic.AddInt32(i.unwrap(), 1)
}

// DecrementIfPositive decrements the value unless it is zero or less, and
// returns the new value along with true when it was decremented.
func (i *AtomicInt32) DecrementIfPositive() (int32, bool) {
	for {
		v := i.Load()
		if v <= 0 {
			return v, false
		}
		if atomic.CompareAndSwapInt32(i.unwrap(), v, v-1) {
			return v - 1, true
		}
	}
}
