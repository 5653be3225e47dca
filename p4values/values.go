/*
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package p4values converts between P4Runtime wire-format field values
// (canonical big-endian byte strings) and Go values: integers, strings,
// and addresses (net.IP, net.HardwareAddr).
package p4values

import (
	"fmt"
	"math/big"
	"net"
	"strconv"
	"strings"
)

// DecodeFormat controls how Decode* functions render their result.
type DecodeFormat int

const (
	// DecodeDefault returns plain integers (or a *big.Int for bitwidth > 64).
	DecodeDefault DecodeFormat = 0
	// DecodeString renders the result as a string (hex, or slash notation).
	DecodeString DecodeFormat = 1 << 0
	// DecodeAddress renders 32/48/128-bit values as net.IP/net.HardwareAddr.
	DecodeAddress DecodeFormat = 1 << 1
)

func (f DecodeFormat) has(bit DecodeFormat) bool { return f&bit != 0 }

// MinimumStringSize implements the P4Runtime "minimum_string_size" function
// (P4Runtime spec section 8.4): the number of bytes needed to hold a value
// of the given bitwidth.
func MinimumStringSize(bitwidth int) (int, error) {
	if bitwidth <= 0 {
		return 0, fmt.Errorf("p4values: invalid bitwidth: %d", bitwidth)
	}
	return (bitwidth + 7) / 8, nil
}

// Truncate strips leading zero bytes from value, the canonical P4Runtime
// minimum-length encoding. An all-zero value truncates to a single zero byte.
func Truncate(value []byte) []byte {
	i := 0
	for i < len(value) && value[i] == 0 {
		i++
	}
	if i == len(value) {
		return []byte{0}
	}
	return value[i:]
}

// AllOnes returns a *big.Int with `bitwidth` one bits.
func AllOnes(bitwidth int) *big.Int {
	one := big.NewInt(1)
	result := new(big.Int).Lsh(one, uint(bitwidth))
	return result.Sub(result, one)
}

// MaskToPrefix converts a contiguous high-order mask into a prefix length.
// Returns -1 if the mask is discontiguous.
func MaskToPrefix(value *big.Int, bitwidth int) int {
	allOnes := AllOnes(bitwidth)
	mask := new(big.Int).Xor(value, allOnes) // ~value & allOnes, value already < allOnes
	mask.And(mask, allOnes)

	maskPlus1 := new(big.Int).Add(mask, big.NewInt(1))
	check := new(big.Int).And(mask, maskPlus1)
	if check.Sign() != 0 {
		return -1
	}
	return bitwidth - mask.BitLen()
}

func invalidErr(kind string, bitwidth int, value any) error {
	if kind == "exact" {
		return fmt.Errorf("p4values: invalid value for bitwidth %d: %#v", bitwidth, value)
	}
	return fmt.Errorf("p4values: invalid %s value for bitwidth %d: %#v", strings.ToUpper(kind), bitwidth, value)
}

func parseExactString(value string, bitwidth int) (*big.Int, error) {
	value = strings.TrimSpace(value)

	if bitwidth == 32 && strings.Contains(value, ".") {
		ip := net.ParseIP(value).To4()
		if ip == nil {
			return nil, invalidErr("exact", bitwidth, value)
		}
		return new(big.Int).SetBytes(ip), nil
	}
	if bitwidth == 128 && strings.Contains(value, ":") {
		ip := net.ParseIP(value).To16()
		if ip == nil {
			return nil, invalidErr("exact", bitwidth, value)
		}
		return new(big.Int).SetBytes(ip), nil
	}
	if bitwidth == 48 && strings.Contains(value, ":") {
		mac, err := net.ParseMAC(value)
		if err != nil {
			return nil, invalidErr("exact", bitwidth, value)
		}
		return new(big.Int).SetBytes(mac), nil
	}

	base := 10
	s := value
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	i, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, invalidErr("exact", bitwidth, value)
	}
	return i, nil
}

func decodeAddr(value *big.Int, bitwidth int, format DecodeFormat) any {
	switch bitwidth {
	case 128:
		b := make([]byte, 16)
		value.FillBytes(b)
		ip := net.IP(b)
		if format.has(DecodeString) {
			return ip.String()
		}
		return ip
	case 48:
		b := make([]byte, 6)
		value.FillBytes(b)
		mac := net.HardwareAddr(b)
		if format.has(DecodeString) {
			return mac.String()
		}
		return mac
	case 32:
		b := make([]byte, 4)
		value.FillBytes(b)
		ip := net.IP(b)
		if format.has(DecodeString) {
			return ip.String()
		}
		return ip
	default:
		if format.has(DecodeString) {
			return "0x" + value.Text(16)
		}
		return value
	}
}

// EncodeExact encodes an exact-match field value into its canonical P4Runtime
// byte encoding. Supported inputs: int, int64, uint64, *big.Int, string
// (decimal, 0x-hex, dotted IPv4, colon IPv6, colon MAC, or an SdnString when
// bitwidth is 0), net.IP, net.HardwareAddr.
func EncodeExact(value any, bitwidth int) ([]byte, error) {
	if value == nil {
		return nil, fmt.Errorf("p4values: value must not be nil")
	}

	if bitwidth == 0 {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("p4values: invalid value for SdnString: %#v", value)
		}
		return []byte(s), nil
	}

	ival, err := toBigInt(value, bitwidth)
	if err != nil {
		return nil, err
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(bitwidth))
	if ival.Sign() < 0 || ival.Cmp(limit) >= 0 {
		return nil, invalidErr("exact", bitwidth, value)
	}

	size, err := MinimumStringSize(bitwidth)
	if err != nil {
		return nil, err
	}
	b := make([]byte, size)
	ival.FillBytes(b)
	return Truncate(b), nil
}

// EncodeExactMasked is EncodeExact followed by an AND with mask, used by
// EncodeLPM/EncodeTernary to zero the bits outside a prefix.
func EncodeExactMasked(value any, bitwidth int, mask *big.Int) ([]byte, error) {
	ival, err := toBigInt(value, bitwidth)
	if err != nil {
		return nil, err
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bitwidth))
	if ival.Sign() < 0 || ival.Cmp(limit) >= 0 {
		return nil, invalidErr("exact", bitwidth, value)
	}
	ival.And(ival, mask)

	size, err := MinimumStringSize(bitwidth)
	if err != nil {
		return nil, err
	}
	b := make([]byte, size)
	ival.FillBytes(b)
	return Truncate(b), nil
}

func toBigInt(value any, bitwidth int) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case string:
		return parseExactString(v, bitwidth)
	case net.IP:
		if bitwidth == 32 {
			ip4 := v.To4()
			if ip4 == nil {
				return nil, invalidErr("exact", bitwidth, value)
			}
			return new(big.Int).SetBytes(ip4), nil
		}
		if bitwidth == 128 {
			ip6 := v.To16()
			if ip6 == nil {
				return nil, invalidErr("exact", bitwidth, value)
			}
			return new(big.Int).SetBytes(ip6), nil
		}
		return nil, invalidErr("exact", bitwidth, value)
	case net.HardwareAddr:
		if bitwidth != 48 {
			return nil, invalidErr("exact", bitwidth, value)
		}
		return new(big.Int).SetBytes(v), nil
	default:
		return nil, invalidErr("exact", bitwidth, value)
	}
}

// DecodeExact decodes a canonical P4Runtime byte value into an integer,
// string, or address, depending on format.
func DecodeExact(data []byte, bitwidth int, format DecodeFormat) (any, error) {
	if bitwidth == 0 {
		return string(data), nil
	}
	if len(data) == 0 {
		return nil, invalidErr("exact", bitwidth, data)
	}

	ival := new(big.Int).SetBytes(data)
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bitwidth))
	if ival.Cmp(limit) >= 0 {
		return nil, invalidErr("exact", bitwidth, data)
	}

	if format.has(DecodeAddress) {
		return decodeAddr(ival, bitwidth, format), nil
	}
	if format.has(DecodeString) {
		return "0x" + ival.Text(16), nil
	}
	if bitwidth <= 64 {
		return ival.Uint64(), nil
	}
	return ival, nil
}

// FormatExact renders value as its canonical string form for the given
// bitwidth and format.
func FormatExact(value any, bitwidth int, format DecodeFormat) (string, error) {
	data, err := EncodeExact(value, bitwidth)
	if err != nil {
		return "", err
	}
	result, err := DecodeExact(data, bitwidth, format|DecodeString)
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// LPMValue is the decoded (value, prefixLen) pair produced by DecodeLPM.
type LPMValue struct {
	Value     []byte
	PrefixLen int
}

func parseLPMPrefix(value string, bitwidth int) (int, error) {
	if bitwidth == 32 && strings.Contains(value, ".") {
		ip := net.ParseIP(value).To4()
		if ip == nil {
			return 0, fmt.Errorf("p4values: invalid netmask: %q", value)
		}
		return MaskToPrefix(new(big.Int).SetBytes(ip), 32), nil
	}
	if bitwidth == 128 && strings.Contains(value, ":") {
		ip := net.ParseIP(value).To16()
		if ip == nil {
			return 0, fmt.Errorf("p4values: invalid netmask: %q", value)
		}
		return MaskToPrefix(new(big.Int).SetBytes(ip), 128), nil
	}
	if bitwidth == 48 && strings.Contains(value, ":") {
		mac, err := net.ParseMAC(value)
		if err != nil {
			return 0, err
		}
		return MaskToPrefix(new(big.Int).SetBytes(mac), 48), nil
	}
	return strconv.Atoi(value)
}

func parseLPMString(value string, bitwidth int) ([]byte, int, error) {
	slash := strings.IndexByte(value, '/')
	if slash < 0 {
		data, err := EncodeExact(value, bitwidth)
		return data, bitwidth, err
	}

	prefix, err := parseLPMPrefix(value[slash+1:], bitwidth)
	if err != nil {
		return nil, 0, err
	}
	if prefix > bitwidth || prefix < 0 {
		return nil, 0, invalidErr("lpm", bitwidth, value)
	}
	mask := new(big.Int).Lsh(AllOnes(prefix), uint(bitwidth-prefix))
	data, err := EncodeExactMasked(value[:slash], bitwidth, mask)
	return data, prefix, err
}

// EncodeLPM encodes a longest-prefix-match value. Supported inputs mirror
// EncodeExact, plus: string "value/prefix", and a [2]any{value, prefixLen}.
func EncodeLPM(value any, bitwidth int) ([]byte, int, error) {
	if value == nil {
		return nil, 0, fmt.Errorf("p4values: value must not be nil")
	}
	if bitwidth == 0 {
		return nil, 0, invalidErr("lpm", bitwidth, value)
	}

	switch v := value.(type) {
	case string:
		return parseLPMString(v, bitwidth)
	case [2]any:
		prefix, ok := v[1].(int)
		if !ok || prefix > bitwidth || prefix < 0 {
			return nil, 0, invalidErr("lpm", bitwidth, value)
		}
		mask := new(big.Int).Lsh(AllOnes(prefix), uint(bitwidth-prefix))
		data, err := EncodeExactMasked(v[0], bitwidth, mask)
		return data, prefix, err
	case *net.IPNet:
		ones, bits := v.Mask.Size()
		if bits != bitwidth {
			return nil, 0, invalidErr("lpm", bitwidth, value)
		}
		data, err := EncodeExact(v.IP, bitwidth)
		return data, ones, err
	default:
		data, err := EncodeExact(value, bitwidth)
		return data, bitwidth, err
	}
}

// DecodeLPM decodes a P4Runtime LPM value into an (address/prefix) form.
func DecodeLPM(data []byte, prefixLen, bitwidth int, format DecodeFormat) (any, error) {
	value, err := DecodeExact(data, bitwidth, format)
	if err != nil {
		return nil, err
	}
	switch v := value.(type) {
	case net.IP:
		bits := bitwidth
		mask := net.CIDRMask(prefixLen, bits)
		return &net.IPNet{IP: v.Mask(mask), Mask: mask}, nil
	case string:
		return fmt.Sprintf("%s/%d", v, prefixLen), nil
	default:
		return [2]any{v, prefixLen}, nil
	}
}

// FormatLPM renders value as its canonical "value/prefix" string form.
func FormatLPM(value any, bitwidth int, format DecodeFormat) (string, error) {
	data, prefix, err := EncodeLPM(value, bitwidth)
	if err != nil {
		return "", err
	}
	result, err := DecodeLPM(data, prefix, bitwidth, format|DecodeString)
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func parseTernaryString(value string, bitwidth int) ([]byte, []byte, error) {
	amp := strings.Index(value, "/&")
	if amp < 0 {
		data, prefix, err := parseLPMString(value, bitwidth)
		if err != nil {
			return nil, nil, err
		}
		mask := new(big.Int).Lsh(AllOnes(prefix), uint(bitwidth-prefix))
		maskBytes, err := EncodeExact(mask, bitwidth)
		return data, maskBytes, err
	}

	data, err := EncodeExact(value[:amp], bitwidth)
	if err != nil {
		return nil, nil, err
	}
	maskBytes, err := EncodeExact(value[amp+2:], bitwidth)
	if err != nil {
		return nil, nil, err
	}
	if err := validateTernaryMask(data, maskBytes); err != nil {
		return nil, nil, err
	}
	return data, maskBytes, nil
}

// validateTernaryMask rejects a ternary (value, mask) pair where value has
// a bit set that mask leaves as don't-care. data/mask may have been
// Truncate-d to different lengths, so the comparison goes through big.Int
// rather than a byte-for-byte walk.
func validateTernaryMask(data, mask []byte) error {
	val := new(big.Int).SetBytes(data)
	m := new(big.Int).SetBytes(mask)
	stray := new(big.Int).AndNot(val, m)
	if stray.Sign() != 0 {
		return fmt.Errorf("p4values: value has bits set outside mask: value=%x mask=%x", data, mask)
	}
	return nil
}

// EncodeTernary encodes a ternary-match (value, mask) pair. Supported
// inputs mirror EncodeExact, plus: string "value/prefix" or "value/&mask",
// *net.IPNet, and a [2]any{value, mask}. Any bit set in value that mask
// leaves as don't-care is rejected.
func EncodeTernary(value any, bitwidth int) ([]byte, []byte, error) {
	if value == nil {
		return nil, nil, fmt.Errorf("p4values: value must not be nil")
	}

	var data, maskBytes []byte
	var err error

	switch v := value.(type) {
	case string:
		return parseTernaryString(v, bitwidth)
	case [2]any:
		data, err = EncodeExact(v[0], bitwidth)
		if err != nil {
			return nil, nil, err
		}
		maskBytes, err = EncodeExact(v[1], bitwidth)
	case *net.IPNet:
		data, err = EncodeExact(v.IP, bitwidth)
		if err != nil {
			return nil, nil, err
		}
		ones, _ := v.Mask.Size()
		mask := new(big.Int).Lsh(AllOnes(ones), uint(bitwidth-ones))
		maskBytes, err = EncodeExact(mask, bitwidth)
	default:
		data, err = EncodeExact(value, bitwidth)
		if err != nil {
			return nil, nil, err
		}
		maskBytes, err = EncodeExact(AllOnes(bitwidth), bitwidth)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := validateTernaryMask(data, maskBytes); err != nil {
		return nil, nil, err
	}
	return data, maskBytes, nil
}

// DecodeTernary decodes a P4Runtime ternary (value, mask) pair.
func DecodeTernary(data, mask []byte, bitwidth int, format DecodeFormat) (any, error) {
	dval, err := DecodeExact(data, bitwidth, format)
	if err != nil {
		return nil, err
	}
	mval, err := DecodeExact(mask, bitwidth, format)
	if err != nil {
		return nil, err
	}
	if s, ok := dval.(string); ok {
		return fmt.Sprintf("%s/&%s", s, mval), nil
	}
	return [2]any{dval, mval}, nil
}

// FormatTernary renders value as its canonical "value/&mask" string form.
func FormatTernary(value any, bitwidth int, format DecodeFormat) (string, error) {
	data, mask, err := EncodeTernary(value, bitwidth)
	if err != nil {
		return "", err
	}
	result, err := DecodeTernary(data, mask, bitwidth, format|DecodeString)
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// EncodeRange encodes a range-match (low, high) pair. Supported inputs:
// string "lo...hi", or a [2]any{lo, hi}.
func EncodeRange(value any, bitwidth int) ([]byte, []byte, error) {
	if value == nil {
		return nil, nil, fmt.Errorf("p4values: value must not be nil")
	}

	switch v := value.(type) {
	case string:
		parts := strings.SplitN(v, "...", 2)
		if len(parts) != 2 {
			return nil, nil, invalidErr("range", bitwidth, value)
		}
		low, err := EncodeExact(parts[0], bitwidth)
		if err != nil {
			return nil, nil, err
		}
		high, err := EncodeExact(parts[1], bitwidth)
		return low, high, err
	case [2]any:
		low, err := EncodeExact(v[0], bitwidth)
		if err != nil {
			return nil, nil, err
		}
		high, err := EncodeExact(v[1], bitwidth)
		return low, high, err
	default:
		return nil, nil, invalidErr("range", bitwidth, value)
	}
}

// DecodeRange decodes a P4Runtime range (low, high) pair.
func DecodeRange(low, high []byte, bitwidth int, format DecodeFormat) (any, error) {
	lval, err := DecodeExact(low, bitwidth, format)
	if err != nil {
		return nil, err
	}
	hval, err := DecodeExact(high, bitwidth, format)
	if err != nil {
		return nil, err
	}
	if s, ok := lval.(string); ok {
		return fmt.Sprintf("%s...%s", s, hval), nil
	}
	return [2]any{lval, hval}, nil
}

// FormatRange renders value as its canonical "lo...hi" string form.
func FormatRange(value any, bitwidth int, format DecodeFormat) (string, error) {
	low, high, err := EncodeRange(value, bitwidth)
	if err != nil {
		return "", err
	}
	result, err := DecodeRange(low, high, bitwidth, format|DecodeString)
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
