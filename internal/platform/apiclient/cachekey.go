package apiclient

import (
	"encoding/hex"
	"strings"

	"github.com/bytedance/sonic"
	"lukechampine.com/blake3"
)

// CacheKey builds METHOD:path:params:body. Params are rendered with sorted keys and the body
// is reduced to a BLAKE3 digest, so identical requests always share one key.
func CacheKey(method, path string, params map[string]string, body []byte) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(':')
	b.WriteString(path)
	b.WriteByte(':')
	b.WriteString(encodeParams(params))
	b.WriteByte(':')
	b.WriteString(bodyDigest(body))
	return b.String()
}

// CachePrefix matches every key produced for method and path regardless of params.
func CachePrefix(method, path string) string {
	return strings.ToUpper(method) + ":" + path + ":"
}

func encodeParams(params map[string]string) string {
	if len(params) == 0 {
		return "{}"
	}
	// ConfigStd sorts map keys.
	raw, err := sonic.ConfigStd.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func bodyDigest(body []byte) string {
	if len(body) == 0 {
		return "{}"
	}
	sum := blake3.Sum256(body)
	return hex.EncodeToString(sum[:16])
}
