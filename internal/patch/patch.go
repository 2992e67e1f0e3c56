// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

// Package patch substitutes function slots of dispatch tables owned by
// someone else, and restores them later.
//
// A dispatch table is a struct of function fields, shared by every object
// of the same implementation. A function value is one pointer word, so that a
// slot is swapped with a single atomic store and callers loading it
// concurrently observe either the old or the new function, never a torn one.
//
// The protocol of a mutation is always the same:
//
// 1. make the table memory writable,
// 2. swap the selected slots only,
// 3. flush the instruction cache of the table memory,
// 4. restore the prior memory protection.
//
// # Main requirements
//
//   - At most one installation per hook. Installing again first restores the
//     previous installation, so that interceptors never chain and the true
//     original is never lost.
//   - The interceptor table is built out of a copy of the original table, so
//     that replacement functions can bind the original function they forward
//     to. A call which loaded a replacement function just before it was
//     uninstalled still correctly forwards to the original.
//   - Restoring only puts back originals in slots still holding this hook's
//     replacement: a slot swapped by someone else in the meantime is left
//     untouched.
package patch

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/sqreen/go-dxvahook/abi"
	"github.com/sqreen/go-dxvahook/internal/sqlib/sqerrors"
	"golang.org/x/xerrors"
)

var (
	// ErrDenied is returned when the memory protection of a table cannot be
	// changed. Nothing was mutated.
	ErrDenied = xerrors.New("memory protection change denied")
	// ErrTableType is returned when a table does not have the type the hook
	// was created with.
	ErrTableType = xerrors.New("unexpected dispatch table type")
	// ErrIncompleteInterceptor is returned when the interceptor table leaves
	// a hooked slot nil.
	ErrIncompleteInterceptor = xerrors.New("incomplete interceptor table")
)

// RestoreProtectionError is returned when the slots were swapped but the
// instruction cache flush or the restoration of the prior memory protection
// failed. The swap is effective.
type RestoreProtectionError struct {
	Err error
}

func (e *RestoreProtectionError) Error() string {
	return fmt.Sprintf("could not restore the memory protection: %v", e.Err)
}

func (e *RestoreProtectionError) Unwrap() error { return e.Err }

// BindFunc returns the interceptor table of an installation. It is given a
// pointer to a copy of the original table, with only the hooked slots set,
// and must return a pointer to a table of the same type whose hooked slots
// are non-nil. Other slots of the returned table are ignored.
type BindFunc func(original interface{}) (interceptor interface{})

// Hook substitutes a fixed set of slots of dispatch tables of one type.
type Hook struct {
	name      string
	tableType reflect.Type
	slots     []int
	protector Protector

	// mu serializes installations. Interception functions never take it.
	mu        sync.Mutex
	installed *installation
}

type installation struct {
	table       reflect.Value
	original    reflect.Value
	interceptor reflect.Value
	// Function words of the original and interceptor tables, per slot.
	originalWords    []unsafe.Pointer
	interceptorWords []unsafe.Pointer
}

// New returns a hook of the given slots of tables having the type of `table`,
// a pointer to a struct of functions. The pointer value itself can be nil.
func New(name string, table interface{}, protector Protector, slots ...abi.Method) (*Hook, error) {
	typ := reflect.TypeOf(table)
	if err := validateTableType(typ); err != nil {
		return nil, sqerrors.Wrapf(err, "hook `%s`", name)
	}
	if len(slots) == 0 {
		return nil, sqerrors.Errorf("hook `%s`: no slot to hook", name)
	}
	if protector == nil {
		protector = Writable
	}
	indices := make([]int, len(slots))
	seen := make(map[int]struct{}, len(slots))
	for i, slot := range slots {
		index := int(slot)
		if index < 0 || index >= typ.Elem().NumField() {
			return nil, sqerrors.Errorf("hook `%s`: slot `%d` out of range of `%s`", name, index, typ)
		}
		if _, exists := seen[index]; exists {
			return nil, sqerrors.Errorf("hook `%s`: slot `%s` given twice", name, typ.Elem().Field(index).Name)
		}
		seen[index] = struct{}{}
		indices[i] = index
	}
	return &Hook{
		name:      name,
		tableType: typ,
		slots:     indices,
		protector: protector,
	}, nil
}

// validateTableType checks the table type is a pointer to a struct of
// functions.
func validateTableType(typ reflect.Type) error {
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return xerrors.Errorf("`%s` is not a pointer to a struct: %w", typ, ErrTableType)
	}
	elem := typ.Elem()
	for i := 0; i < elem.NumField(); i++ {
		if f := elem.Field(i); f.Type.Kind() != reflect.Func {
			return xerrors.Errorf("field `%s` of `%s` is not a function: %w", f.Name, elem, ErrTableType)
		}
	}
	return nil
}

func (h *Hook) String() string {
	return fmt.Sprintf("%s (%s)", h.name, h.tableType)
}

// Installed returns true when the hook is currently installed.
func (h *Hook) Installed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.installed != nil
}

// Table returns the table currently patched, nil otherwise.
func (h *Hook) Table() interface{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.installed == nil {
		return nil
	}
	return h.installed.table.Interface()
}

// Install patches the hooked slots of `table` with the interceptor table
// `bind` returns. The previous installation, if any, is uninstalled first.
// When an error other than a RestoreProtectionError is returned, the table is
// left unpatched.
func (h *Hook) Install(table interface{}, bind BindFunc) (err error) {
	defer func() {
		if err != nil {
			err = sqerrors.Wrapf(err, "hook `%s` installation", h)
		}
	}()

	tableValue := reflect.ValueOf(table)
	if !tableValue.IsValid() || tableValue.Type() != h.tableType {
		return xerrors.Errorf("got `%T`: %w", table, ErrTableType)
	}
	if tableValue.IsNil() {
		return xerrors.Errorf("nil table: %w", ErrTableType)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.uninstall(); err != nil {
		return err
	}

	inst := &installation{
		table:            tableValue,
		original:         reflect.New(h.tableType.Elem()),
		originalWords:    make([]unsafe.Pointer, len(h.slots)),
		interceptorWords: make([]unsafe.Pointer, len(h.slots)),
	}
	for i, slot := range h.slots {
		word := atomic.LoadPointer(slotAddr(tableValue, slot))
		inst.originalWords[i] = word
		*slotAddr(inst.original, slot) = word
	}

	bound := bind(inst.original.Interface())
	interceptor := reflect.ValueOf(bound)
	if !interceptor.IsValid() || interceptor.Type() != h.tableType || interceptor.IsNil() {
		return xerrors.Errorf("bind returned `%T`: %w", bound, ErrTableType)
	}
	for i, slot := range h.slots {
		word := *slotAddr(interceptor, slot)
		if word == nil {
			return xerrors.Errorf("slot `%s` is nil: %w", h.tableType.Elem().Field(slot).Name, ErrIncompleteInterceptor)
		}
		inst.interceptorWords[i] = word
	}
	inst.interceptor = interceptor

	return h.mutate(tableValue, func() {
		for i, slot := range h.slots {
			atomic.StorePointer(slotAddr(tableValue, slot), inst.interceptorWords[i])
		}
		h.installed = inst
	})
}

// Uninstall restores the original slots of the currently patched table. It
// does nothing when the hook is not installed. When the memory protection
// change is denied, the hook stays installed.
func (h *Hook) Uninstall() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.uninstall(); err != nil {
		return sqerrors.Wrapf(err, "hook `%s` uninstallation", h)
	}
	return nil
}

func (h *Hook) uninstall() error {
	inst := h.installed
	if inst == nil {
		return nil
	}
	return h.mutate(inst.table, func() {
		for i, slot := range h.slots {
			atomic.CompareAndSwapPointer(slotAddr(inst.table, slot), inst.interceptorWords[i], inst.originalWords[i])
		}
		h.installed = nil
	})
}

// mutate runs `swap` while the table memory is writable.
func (h *Hook) mutate(table reflect.Value, swap func()) error {
	addr := table.Pointer()
	size := h.tableType.Elem().Size()
	restore, err := h.protector.Unprotect(addr, size)
	if err != nil {
		if xerrors.Is(err, ErrDenied) {
			return err
		}
		return xerrors.Errorf("%v: %w", err, ErrDenied)
	}
	swap()
	var errs sqerrors.ErrorCollection
	errs.Add(h.protector.FlushInstructionCache(addr, size))
	errs.Add(restore())
	if err := errs.ToError(); err != nil {
		return &RestoreProtectionError{Err: err}
	}
	return nil
}

// slotAddr returns the address of the function word of slot `i` of the table
// pointed to by `table`.
func slotAddr(table reflect.Value, i int) *unsafe.Pointer {
	return (*unsafe.Pointer)(unsafe.Pointer(table.Elem().Field(i).UnsafeAddr()))
}
