package transport

import "github.com/rs/zerolog/log"

// MaxErrorCode is the largest application error code representable on the
// wire, a QUIC variable-length integer of 62 bits.
const MaxErrorCode ErrorCode = (1 << 62) - 1

// ClampCode bounds an application error code to the representable range.
// Codes above MaxErrorCode degrade to MaxErrorCode instead of failing, so
// best-effort signals like reset and stop never error on a bad code.
func ClampCode(code ErrorCode) ErrorCode {
	if code > MaxErrorCode {
		log.Debug().Uint64("code", uint64(code)).Msg("clamping application error code to varint max")
		return MaxErrorCode
	}
	return code
}
