package pinning

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenLauncher/internal/model"
)

const (
	testJWT   = "test-jwt"
	imageCID  = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	metaCID   = "QmbHoD9UJ1L2xfv5oFvhANsWzf1tMzN2Lr8YrPDACXt1aE"
	pngHeader = "\x89PNG\r\n\x1a\n"
)

type pinataStub struct {
	fileHits atomic.Int32
	jsonHits atomic.Int32

	lastFilename    string
	lastContentType string
	lastFile        []byte
	lastJSON        []byte
	status          int
	hash            string
}

func (s *pinataStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(pinFilePath, func(w http.ResponseWriter, r *http.Request) {
		s.fileHits.Add(1)
		assert.Equal(t, "Bearer "+testJWT, r.Header.Get("Authorization"))
		if s.status != 0 {
			w.WriteHeader(s.status)
			_, _ = w.Write([]byte(`{"error":"denied"}`))
			return
		}
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		s.lastFilename = header.Filename
		s.lastContentType = header.Header.Get("Content-Type")
		s.lastFile, _ = io.ReadAll(file)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"IpfsHash": s.hashOr(imageCID), "PinSize": len(s.lastFile)})
	})
	mux.HandleFunc(pinJSONPath, func(w http.ResponseWriter, r *http.Request) {
		s.jsonHits.Add(1)
		assert.Equal(t, "Bearer "+testJWT, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if s.status != 0 {
			w.WriteHeader(s.status)
			return
		}
		s.lastJSON, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"IpfsHash": s.hashOr(metaCID)})
	})
	return mux
}

func (s *pinataStub) hashOr(fallback string) string {
	if s.hash != "" {
		return s.hash
	}
	return fallback
}

func newTestClient(t *testing.T, api *httptest.Server, gateway string) *Client {
	t.Helper()
	client, err := NewClient(Config{JWT: testJWT, APIBase: api.URL, GatewayBase: gateway}, api.Client(), nil)
	require.NoError(t, err)
	return client
}

func TestUploadRequiresJWT(t *testing.T) {
	stub := &pinataStub{}
	api := httptest.NewServer(stub.handler(t))
	defer api.Close()

	client, err := NewClient(Config{APIBase: api.URL}, api.Client(), nil)
	require.NoError(t, err)

	_, err = client.UploadJSON(context.Background(), model.TokenMetadata{Name: "Nani", Symbol: "NNF"})
	require.ErrorIs(t, err, ErrNoCredentials)
	assert.Zero(t, stub.jsonHits.Load())
}

func TestUploadFromURL(t *testing.T) {
	stub := &pinataStub{}
	api := httptest.NewServer(stub.handler(t))
	defer api.Close()

	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/y.png", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte(pngHeader + "pixels"))
	}))
	defer images.Close()

	client := newTestClient(t, api, "")
	ref, err := client.UploadFromURL(context.Background(), images.URL+"/y.png")
	require.NoError(t, err)

	assert.Equal(t, model.ContentRef("ipfs://"+imageCID), ref)
	assert.Equal(t, "image.png", stub.lastFilename)
	assert.Equal(t, "image/png", stub.lastContentType)
	assert.Equal(t, pngHeader+"pixels", string(stub.lastFile))
}

func TestUploadFromURLDefaultsContentType(t *testing.T) {
	stub := &pinataStub{}
	api := httptest.NewServer(stub.handler(t))
	defer api.Close()

	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("raw"))
	}))
	defer images.Close()

	client := newTestClient(t, api, "")
	_, err := client.UploadFromURL(context.Background(), images.URL+"/img")
	require.NoError(t, err)

	assert.Equal(t, "image.jpeg", stub.lastFilename)
	assert.Equal(t, "image/jpeg", stub.lastContentType)
}

func TestUploadFromURLFetchFailure(t *testing.T) {
	stub := &pinataStub{}
	api := httptest.NewServer(stub.handler(t))
	defer api.Close()

	images := httptest.NewServer(http.NotFoundHandler())
	defer images.Close()

	client := newTestClient(t, api, "")
	_, err := client.UploadFromURL(context.Background(), images.URL+"/missing.png")

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream), "expected UpstreamError, got %v", err)
	assert.Equal(t, StageFetch, upstream.Stage)
	assert.Equal(t, http.StatusNotFound, upstream.Status)
	assert.Zero(t, stub.fileHits.Load(), "pinning must not run when the fetch fails")
}

func TestUploadBytesPinFailure(t *testing.T) {
	stub := &pinataStub{status: http.StatusUnauthorized}
	api := httptest.NewServer(stub.handler(t))
	defer api.Close()

	client := newTestClient(t, api, "")
	_, err := client.UploadBytes(context.Background(), []byte("x"), "x.bin", "")

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, StagePin, upstream.Stage)
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
	assert.Contains(t, upstream.Body, "denied")
}

func TestUploadBytesRejectsInvalidCID(t *testing.T) {
	stub := &pinataStub{hash: "not-a-cid"}
	api := httptest.NewServer(stub.handler(t))
	defer api.Close()

	client := newTestClient(t, api, "")
	_, err := client.UploadBytes(context.Background(), []byte("x"), "x.bin", "application/octet-stream")

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, StagePin, upstream.Stage)
}

func TestUploadBytesTransportFailure(t *testing.T) {
	api := httptest.NewServer(http.NotFoundHandler())
	client := newTestClient(t, api, "")
	api.Close()

	_, err := client.UploadBytes(context.Background(), []byte("x"), "x.bin", "")

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, StagePin, upstream.Stage)
	assert.Zero(t, upstream.Status)
	assert.Error(t, upstream.Err)
}

func TestUploadJSONSubstitutesPlaceholderImage(t *testing.T) {
	stub := &pinataStub{}
	api := httptest.NewServer(stub.handler(t))
	defer api.Close()

	client := newTestClient(t, api, "")
	ref, err := client.UploadJSON(context.Background(), model.TokenMetadata{
		Name:        "Nani",
		Symbol:      "NNF",
		Description: "NANIFUN Token",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ContentRef("ipfs://"+metaCID), ref)

	var sent model.TokenMetadata
	require.NoError(t, json.Unmarshal(stub.lastJSON, &sent))
	assert.Equal(t, model.PlaceholderImage, sent.Image)
	assert.Equal(t, "Nani", sent.Name)
}

func TestUploadJSONKeepsImage(t *testing.T) {
	stub := &pinataStub{}
	api := httptest.NewServer(stub.handler(t))
	defer api.Close()

	client := newTestClient(t, api, "")
	image := model.ContentRef("ipfs://" + imageCID)
	_, err := client.UploadJSON(context.Background(), model.TokenMetadata{Name: "Nani", Symbol: "NNF", Image: image})
	require.NoError(t, err)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(stub.lastJSON, &sent))
	assert.Equal(t, string(image), sent["image"])
}

func TestUploadFile(t *testing.T) {
	stub := &pinataStub{}
	api := httptest.NewServer(stub.handler(t))
	defer api.Close()

	path := filepath.Join(t.TempDir(), "token-image.png")
	require.NoError(t, os.WriteFile(path, []byte(pngHeader+"data"), 0o644))

	client := newTestClient(t, api, "")
	_, err := client.UploadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "token-image.png", stub.lastFilename)
	assert.Equal(t, "image/png", stub.lastContentType)
}

func TestReadBack(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ipfs/" + metaCID:
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = w.Write([]byte(`{"name":"Nani","image":"ipfs://` + imageCID + `"}`))
		case "/ipfs/" + imageCID:
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte(pngHeader))
		default:
			http.NotFound(w, r)
		}
	}))
	defer gateway.Close()

	api := httptest.NewServer(http.NotFoundHandler())
	defer api.Close()
	client := newTestClient(t, api, gateway.URL+"/ipfs")

	meta, err := client.ReadBack(context.Background(), model.ContentRef("ipfs://"+metaCID))
	require.NoError(t, err)
	decoded, ok := meta.JSON.(map[string]interface{})
	require.True(t, ok, "json payload expected, got %T", meta.JSON)
	assert.Equal(t, "Nani", decoded["name"])

	image, err := client.ReadBack(context.Background(), model.ContentRef("ipfs://"+imageCID))
	require.NoError(t, err)
	assert.Nil(t, image.JSON)
	assert.Equal(t, []byte(pngHeader), image.Data)

	_, err = client.ReadBack(context.Background(), model.ContentRef("ipfs://QmUNLLsPACCz1vLxQVkXqqLX5R1X345qqfHbsf67hvA3Nn"))
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, StageRead, upstream.Stage)
}

func TestGatewayURL(t *testing.T) {
	client, err := NewClient(Config{JWT: testJWT}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://ipfs.io/ipfs/"+metaCID, client.GatewayURL(model.PlaceholderImage))
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"image/png":                "png",
		"image/svg+xml":            "svg",
		"image/jpeg; charset=utf8": "jpeg",
		"garbage":                  "jpg",
	}
	for input, want := range cases {
		assert.Equal(t, want, extensionFor(input), input)
	}
}
