package example

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfSignedServesHTTPS(t *testing.T) {
	server, client, err := SelfSigned()
	require.NoError(t, err)
	require.Len(t, server.Certificates, 1)
	require.NotNil(t, client.RootCAs)

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = server
	srv.StartTLS()
	defer srv.Close()

	hc := &http.Client{Transport: &http.Transport{TLSClientConfig: client}}
	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSelfSignedCertificateNames(t *testing.T) {
	server, _, err := SelfSigned()
	require.NoError(t, err)
	leaf := server.Certificates[0].Leaf
	require.NotNil(t, leaf)
	assert.Contains(t, leaf.DNSNames, "localhost")
	assert.NoError(t, leaf.VerifyHostname("127.0.0.1"))
	assert.Equal(t, uint16(tls.VersionTLS12), server.MinVersion)
}
