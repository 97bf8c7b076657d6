package models

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxBioChars is the longest accepted bio, counted in characters.
	MaxBioChars = 1000

	// MaxImageBytes is the largest accepted image payload (5 MiB, inclusive).
	MaxImageBytes = 5 * 1024 * 1024
)

// InputType names a roast input variant.
type InputType string

const (
	InputBio   InputType = "bio"
	InputImage InputType = "image"
)

// RoastInput is the user material to be roasted: either a BioInput or an ImageInput.
type RoastInput interface {
	Type() InputType
	Validate() error
}

// BioInput carries free text describing the user.
type BioInput struct {
	Bio string
}

func (BioInput) Type() InputType { return InputBio }

// Validate rejects blank bios and bios over MaxBioChars.
func (b BioInput) Validate() error {
	if strings.TrimSpace(b.Bio) == "" {
		return NewError(ErrInvalidInput, "Bio text is required.")
	}
	if utf8.RuneCountInString(b.Bio) > MaxBioChars {
		return NewError(ErrInvalidInput, "Bio is too long (max 1000 characters).")
	}
	return nil
}

// ImageInput carries an uploaded photo and its declared media type.
type ImageInput struct {
	Data      []byte
	MediaType string
}

func (ImageInput) Type() InputType { return InputImage }

// Validate checks presence, size and the declared media type.
func (i ImageInput) Validate() error {
	if len(i.Data) == 0 {
		return NewError(ErrInvalidInput, "Image file is required and must be a file.")
	}
	if len(i.Data) > MaxImageBytes {
		return NewError(ErrPayloadTooLarge, "Image file too large (Max 5MB).")
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(i.MediaType)), "image/") {
		return NewError(ErrInvalidInput, "Invalid file type. Only images allowed.")
	}
	return nil
}

// MalformedInput stands in for a request body that could not be decoded into
// a bio or an image. Validate returns the decode error, so it is reported at
// the same point as any other invalid input.
type MalformedInput struct {
	Err error
}

func (MalformedInput) Type() InputType { return "" }

func (m MalformedInput) Validate() error {
	if m.Err == nil {
		return NewError(ErrInvalidInput, "Bio text or image file is required.")
	}
	return m.Err
}

// Roast is a generated roast returned to the caller.
type Roast struct {
	Text  string    `json:"roast"`
	Input InputType `json:"-"`
	Model string    `json:"-"`
}
