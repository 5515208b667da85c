package platform

import (
	"os"
	"strings"

	"golang.org/x/net/http/httpproxy"
)

// DetectProxies reads proxy settings the way a well-behaved HTTP client
// would, matching both upper- and lower-case environment variable forms.
// Its one caller is Probe, which stores the result in Info.Proxies; the
// managed downloader in internal/interpreter does not call it.
func DetectProxies() map[string]string {
	cfg := httpproxy.FromEnvironment()
	out := map[string]string{}
	if cfg.HTTPProxy != "" {
		out["http_proxy"] = cfg.HTTPProxy
	}
	if cfg.HTTPSProxy != "" {
		out["https_proxy"] = cfg.HTTPSProxy
	}
	if cfg.NoProxy != "" {
		out["no_proxy"] = cfg.NoProxy
	}
	return out
}

// lookupEnvEither checks both the given name and its lower-case form,
// matching the case-insensitive convention most proxy-aware tools use.
func lookupEnvEither(name string) (string, bool) {
	if v, ok := os.LookupEnv(strings.ToUpper(name)); ok {
		return v, true
	}
	return os.LookupEnv(strings.ToLower(name))
}
