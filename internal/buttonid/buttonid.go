// Package buttonid encodes the opaque ids handed to the remote surface.
//
// An id is "<prefix><number>_<serial>". The prefix picks the namespace, the
// number is a command index, environment index or utility code, and the
// serial only keeps ids unique. Decode ignores the serial.
package buttonid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Kind is the namespace of an id.
type Kind byte

const (
	KindCommand   Kind = 'c'
	KindThrowaway Kind = 't'
	KindEnvSwitch Kind = 'i'
	KindUtil      Kind = 'u'
)

// Utility codes carried by KindUtil ids.
const (
	UtilReload = iota
	UtilRetry
	UtilCancel
	UtilStick
)

var ErrMalformed = errors.New("malformed button id")

// Allocator hands out unique ids. One allocator belongs to one session; it
// is safe for concurrent use.
type Allocator struct {
	serial atomic.Uint64
}

func (a *Allocator) encode(k Kind, n int) string {
	return fmt.Sprintf("%c%d_%d", k, n, a.serial.Add(1)-1)
}

// Command is the id of a button that runs command index i.
func (a *Allocator) Command(i int) string { return a.encode(KindCommand, i) }

// EnvSwitch is the id of a button that selects environment i.
func (a *Allocator) EnvSwitch(i int) string { return a.encode(KindEnvSwitch, i) }

// Util is the id of a reload, retry, cancel or stick button.
func (a *Allocator) Util(code int) string { return a.encode(KindUtil, code) }

// Throwaway is an id for elements that do nothing when clicked.
func (a *Allocator) Throwaway() string { return a.encode(KindThrowaway, 0) }

// Decode returns the namespace and the embedded number of id.
func Decode(id string) (Kind, int, error) {
	if len(id) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	k := Kind(id[0])
	switch k {
	case KindCommand, KindThrowaway, KindEnvSwitch, KindUtil:
	default:
		return 0, 0, fmt.Errorf("%w: unknown prefix in %q", ErrMalformed, id)
	}
	digits, _, _ := strings.Cut(id[1:], "_")
	n, err := strconv.ParseUint(digits, 10, 31)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformed, id)
	}
	return k, int(n), nil
}
