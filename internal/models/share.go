package models

import (
	"encoding/json"
	"fmt"
	"net/url"

	lzstring "github.com/daku10/go-lz-string"
)

// ShareParam is the query parameter carrying a share token.
const ShareParam = "w"

// EncodeShareToken compresses a world into a URL-safe token. The payload is
// JSON so tokens stay interchangeable with links made by the web client.
func EncodeShareToken(world *WorldConfig) (string, error) {
	data, err := json.Marshal(world)
	if err != nil {
		return "", fmt.Errorf("encode world: %w", err)
	}
	token, err := lzstring.CompressToEncodedURIComponent(string(data))
	if err != nil {
		return "", fmt.Errorf("compress world: %w", err)
	}
	return token, nil
}

// DecodeShareToken reverses EncodeShareToken. Any failure, or a world without
// a title or characters, yields nil.
func DecodeShareToken(token string) *WorldConfig {
	if token == "" {
		return nil
	}
	raw, err := lzstring.DecompressFromEncodedURIComponent(token)
	if err != nil || raw == "" {
		return nil
	}
	var world WorldConfig
	if err := json.Unmarshal([]byte(raw), &world); err != nil {
		return nil
	}
	if world.Title == "" || len(world.Characters) == 0 {
		return nil
	}
	world.Normalize()
	return &world
}

// BuildShareURL returns base with its query replaced by the share token.
func BuildShareURL(base string, world *WorldConfig) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	token, err := EncodeShareToken(world)
	if err != nil {
		return "", err
	}
	u.RawQuery = url.Values{ShareParam: {token}}.Encode()
	return u.String(), nil
}

// SharedConfigFromURL extracts the world carried by a share link, if any.
func SharedConfigFromURL(raw string) *WorldConfig {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return DecodeShareToken(u.Query().Get(ShareParam))
}
