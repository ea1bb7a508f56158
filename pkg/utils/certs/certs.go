// Package certs builds the TLS configuration of the HTTP server, either from
// PEM files or from a traefik acme.json store.
package certs

import (
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var ErrDomainNotFound = errors.New("domain not found")

type Config struct {
	CertFile      string
	KeyFile       string
	TraefikFile   string
	TraefikDomain string
}

// TLSConfig returns nil if no certificate source is configured.
func TLSConfig(cfg Config) (*tls.Config, error) {
	var cert tls.Certificate
	var err error
	switch {
	case cfg.TraefikFile != "":
		cert, err = FromTraefikFile(cfg.TraefikFile, cfg.TraefikDomain)
	case cfg.CertFile != "" && cfg.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func FromTraefikFile(file, domain string) (tls.Certificate, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return tls.Certificate{}, err
	}
	return FromTraefik(string(data), domain)
}

func FromTraefik(jsonData, domain string) (tls.Certificate, error) {
	certData, keyData, err := traefikEntry(jsonData, domain)
	if err != nil {
		return tls.Certificate{}, err
	}
	decodedCert, err := base64.StdEncoding.DecodeString(certData)
	if err != nil {
		return tls.Certificate{}, err
	}
	decodedKey, err := base64.StdEncoding.DecodeString(keyData)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.X509KeyPair(decodedCert, decodedKey)
}

// acme.json groups certificates by resolver, the resolver name is not known
func traefikEntry(jsonData, domain string) (cert, key string, err error) {
	obj, err := oj.ParseString(jsonData)
	if err != nil {
		return "", "", err
	}
	path, err := jp.ParseString(
		fmt.Sprintf(`$..Certificates[?(@.domain.main == %q)]`, domain))
	if err != nil {
		return "", "", err
	}
	res := path.Get(obj)
	if len(res) == 0 {
		return "", "", fmt.Errorf("%w: %s", ErrDomainNotFound, domain)
	}
	entry, ok := res[0].(map[string]any)
	if !ok {
		return "", "", fmt.Errorf("unexpected certificate entry for %s", domain)
	}
	cert, _ = entry["certificate"].(string)
	key, _ = entry["key"].(string)
	return cert, key, nil
}
