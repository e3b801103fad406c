package settings

import "strings"

// ProviderKey is the .env key holding the provider selector.
const ProviderKey = "ARK_PROVIDER"

// Provider selects the Ark API backend used by the external pipeline.
type Provider string

const (
	ProviderBytePlus   Provider = "byteplus"
	ProviderVolcengine Provider = "volcengine"
)

// DefaultProvider is used when the selector is absent or unrecognized.
const DefaultProvider = ProviderBytePlus

// Providers lists the recognized selector values.
func Providers() []Provider {
	return []Provider{ProviderBytePlus, ProviderVolcengine}
}

// ParseProvider resolves a stored selector, falling back to DefaultProvider.
func ParseProvider(value string) Provider {
	p, ok := LookupProvider(value)
	if !ok {
		return DefaultProvider
	}
	return p
}

// LookupProvider reports whether value names a recognized provider.
func LookupProvider(value string) (Provider, bool) {
	switch Provider(strings.ToLower(strings.TrimSpace(value))) {
	case ProviderBytePlus:
		return ProviderBytePlus, true
	case ProviderVolcengine:
		return ProviderVolcengine, true
	default:
		return "", false
	}
}

// SupportsLipSync encodes the provider feature matrix: only Volcengine
// exposes the real-time lip-sync service.
func (p Provider) SupportsLipSync() bool {
	return p == ProviderVolcengine
}

func (p Provider) String() string { return string(p) }

// Key describes one credential or model setting stored in the .env file.
type Key struct {
	Name     string
	Label    string
	Default  string
	Required bool
}

// APIKeys are the credentials the pipeline uses, in display order.
var APIKeys = []Key{
	{Name: "GEMINI_API_KEY", Label: "Gemini API Key (Google)", Required: true},
	{Name: "DOUBAO_API_KEY", Label: "Ark API Key (BytePlus or Volcengine)", Required: true},
	{Name: "ALIYUN_OSS_ACCESS_KEY_ID", Label: "Aliyun OSS Access Key ID"},
	{Name: "ALIYUN_OSS_ACCESS_KEY_SECRET", Label: "Aliyun OSS Access Key Secret"},
	{Name: "ALIYUN_OSS_BUCKET_NAME", Label: "Aliyun OSS Bucket Name"},
	{Name: "HUOSHAN_ACCESS_KEY", Label: "Huoshan Access Key (China only, for lip-sync)"},
	{Name: "HUOSHAN_SECRET_KEY", Label: "Huoshan Secret Key (China only, for lip-sync)"},
}

// ModelSettings are non-secret model identifiers with their defaults.
var ModelSettings = []Key{
	{Name: "GPU_ID", Label: "GPU Device ID", Default: "0"},
	{Name: "WHISPER_MODEL", Label: "Whisper Model", Default: "openai/whisper-large-v2"},
	{Name: "QWEN_OMNI_MODEL", Label: "Qwen Omni Model", Default: "Qwen/Qwen2.5-Omni-7B"},
	{Name: "MODEL_SEEDREAM", Label: "Seedream Model ID", Default: "seedream-4-0-250828"},
	{Name: "MODEL_SEEDANCE", Label: "Seedance Model ID", Default: "seedance-1-0-pro-250528"},
	{Name: "MODEL_SEED_LLM", Label: "Seed LLM Model ID", Default: "seed-1.6-250615"},
}

// LookupKey finds a credential or model key by name.
func LookupKey(name string) (Key, bool) {
	for _, group := range [][]Key{APIKeys, ModelSettings} {
		for _, k := range group {
			if k.Name == name {
				return k, true
			}
		}
	}
	return Key{}, false
}
