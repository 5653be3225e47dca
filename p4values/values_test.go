package p4values

import (
	"math/big"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeExactInt(t *testing.T) {
	data, err := EncodeExact(10, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{10}, data)

	val, err := DecodeExact(data, 8, DecodeDefault)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), val)
}

func TestEncodeExactTruncatesLeadingZero(t *testing.T) {
	data, err := EncodeExact(0, 32)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, data)
}

func TestEncodeExactOutOfRange(t *testing.T) {
	_, err := EncodeExact(256, 8)
	require.Error(t, err)
}

func TestEncodeExactIPv4String(t *testing.T) {
	data, err := EncodeExact("10.0.0.1", 32)
	require.NoError(t, err)
	assert.Equal(t, net.IPv4(10, 0, 0, 1).To4(), net.IP(data))
}

func TestEncodeExactHexString(t *testing.T) {
	data, err := EncodeExact("0xff", 16)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff}, data)
}

func TestEncodeExactMAC(t *testing.T) {
	data, err := EncodeExact("aa:bb:cc:dd:ee:ff", 48)
	require.NoError(t, err)
	assert.Equal(t, net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, net.HardwareAddr(data))
}

func TestEncodeExactSdnString(t *testing.T) {
	data, err := EncodeExact("hello", 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestDecodeExactAddress(t *testing.T) {
	data := net.IPv4(192, 168, 1, 1).To4()
	val, err := DecodeExact(data, 32, DecodeAddress)
	require.NoError(t, err)
	ip, ok := val.(net.IP)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.1", ip.String())
}

func TestFormatExactMAC(t *testing.T) {
	s, err := FormatExact("aa:bb:cc:dd:ee:ff", 48, DecodeAddress)
	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", s)
}

func TestEncodeLPMSlashNotation(t *testing.T) {
	data, prefix, err := EncodeLPM("10.0.0.0/24", 32)
	require.NoError(t, err)
	assert.Equal(t, 24, prefix)
	assert.Equal(t, net.IPv4(10, 0, 0, 0).To4(), net.IP(data))
}

func TestEncodeLPMNoPrefix(t *testing.T) {
	data, prefix, err := EncodeLPM("10.0.0.1", 32)
	require.NoError(t, err)
	assert.Equal(t, 32, prefix)
	assert.Equal(t, net.IPv4(10, 0, 0, 1).To4(), net.IP(data))
}

func TestFormatLPM(t *testing.T) {
	s, err := FormatLPM("10.0.0.0/24", 32, DecodeAddress)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/24", s)
}

func TestEncodeTernarySlashAmp(t *testing.T) {
	data, mask, err := EncodeTernary("0x0a00/&0xff00", 16)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x00}, data)
	assert.Equal(t, []byte{0xff, 0x00}, mask)
}

func TestEncodeTernaryDefaultMaskAllOnes(t *testing.T) {
	_, mask, err := EncodeTernary(5, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff}, mask)
}

func TestFormatTernary(t *testing.T) {
	s, err := FormatTernary([2]any{10, 0xff}, 8, DecodeDefault)
	require.NoError(t, err)
	assert.Equal(t, "0xa/&0xff", s)
}

func TestEncodeTernaryRejectsValueBitsOutsideMask(t *testing.T) {
	_, _, err := EncodeTernary([2]any{5, 4}, 8)
	require.Error(t, err)
}

func TestEncodeTernaryRejectsValueBitsOutsideMaskSlashAmp(t *testing.T) {
	_, _, err := EncodeTernary("0x0a01/&0xff00", 16)
	require.Error(t, err)
}

func TestEncodeTernaryAllowsValueWithinMask(t *testing.T) {
	data, mask, err := EncodeTernary([2]any{4, 4}, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, data)
	assert.Equal(t, []byte{4}, mask)
}

func TestEncodeTernaryIPNetAllowedWhenNetworkAddress(t *testing.T) {
	_, network, err := net.ParseCIDR("10.0.0.0/24")
	require.NoError(t, err)

	data, mask, err := EncodeTernary(network, 32)
	require.NoError(t, err)
	assert.Equal(t, net.IPv4(10, 0, 0, 0).To4(), net.IP(data))
	assert.Equal(t, net.IPv4(255, 255, 255, 0).To4(), net.IP(mask))
}

func TestEncodeTernaryIPNetRejectsHostBitsOutsideMask(t *testing.T) {
	_, _, err := EncodeTernary(&net.IPNet{
		IP:   net.IPv4(10, 0, 0, 5).To4(),
		Mask: net.CIDRMask(24, 32),
	}, 32)
	require.Error(t, err)
}

func TestEncodeRangeDots(t *testing.T) {
	low, high, err := EncodeRange("10...20", 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{10}, low)
	assert.Equal(t, []byte{20}, high)
}

func TestFormatRange(t *testing.T) {
	s, err := FormatRange([2]any{1, 100}, 8, DecodeDefault)
	require.NoError(t, err)
	assert.Equal(t, "0x1...0x64", s)
}

func TestMaskToPrefixDiscontiguous(t *testing.T) {
	p := MaskToPrefix(big.NewInt(0b1010), 4)
	assert.Equal(t, -1, p)
}

func TestMaskToPrefixContiguous(t *testing.T) {
	p := MaskToPrefix(big.NewInt(0b1100), 4)
	assert.Equal(t, 2, p)
}

func TestTruncateAllZero(t *testing.T) {
	assert.Equal(t, []byte{0}, Truncate([]byte{0, 0, 0}))
}

func TestMinimumStringSize(t *testing.T) {
	n, err := MinimumStringSize(9)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
