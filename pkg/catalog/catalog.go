// Package catalog maps short aliases to Replicate model references and
// splits "owner/name:version" references.
package catalog

import (
	"sort"
	"strings"
)

// Entry is one well-known model
type Entry struct {
	Alias       string
	Ref         string
	Name        string
	Description string
}

var entries = []Entry{
	{Alias: "flux-schnell", Ref: "black-forest-labs/flux-schnell", Name: "FLUX Schnell", Description: "Fast, high-quality image generation"},
	{Alias: "flux-pro", Ref: "black-forest-labs/flux-1.1-pro", Name: "FLUX Pro", Description: "Professional-grade image generation"},
	{Alias: "flux-dev", Ref: "black-forest-labs/flux-dev", Name: "FLUX Dev", Description: "Development version with experimental features"},
	{Alias: "imagen-4", Ref: "google/imagen-4", Name: "Google Imagen-4", Description: "Photorealistic image generation"},
	{Alias: "sdxl", Ref: "stability-ai/sdxl:39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b", Name: "Stable Diffusion XL", Description: "High-resolution image generation"},
	{Alias: "sdxl-lightning", Ref: "bytedance/sdxl-lightning-4step:5599ed30703defd1d160a25a63321b4dec97101d98b4674bcc56e41f62f35637", Name: "SDXL Lightning", Description: "4-step SDXL generation"},
	{Alias: "ideogram-turbo", Ref: "ideogram-ai/ideogram-turbo", Name: "Ideogram Turbo", Description: "Text rendering in images"},
	{Alias: "real-esrgan", Ref: "nightmareai/real-esrgan", Name: "Real-ESRGAN", Description: "Image upscaling"},
	{Alias: "llama-3-70b", Ref: "meta/meta-llama-3-70b-instruct", Name: "Llama 3 70B Instruct", Description: "Chat completion"},
	{Alias: "whisper", Ref: "openai/whisper", Name: "Whisper", Description: "Speech to text"},
}

// Resolve expands an alias and splits the result into a model path and an
// optional pinned version. Anything that is not an alias is taken as a
// reference as is.
func Resolve(ref string) (path, version string) {
	ref = strings.TrimSpace(ref)
	if e, ok := Lookup(ref); ok {
		ref = e.Ref
	}
	return Split(ref)
}

// Split separates "owner/name:version" into its path and version
func Split(ref string) (path, version string) {
	path, version, _ = strings.Cut(ref, ":")
	return path, version
}

// Lookup finds an entry by alias, case-insensitively
func Lookup(alias string) (Entry, bool) {
	alias = strings.ToLower(alias)
	for _, e := range entries {
		if e.Alias == alias {
			return e, true
		}
	}
	return Entry{}, false
}

// List returns every entry sorted by alias
func List() []Entry {
	out := append([]Entry(nil), entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}
