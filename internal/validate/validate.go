// Package validate enforces the record schema over raw extracted field
// maps before anything reaches persistence. Required fields must be
// present and of the declared type; optional fields pass through nil
// unchanged. Validation never infers or repairs data — it fails closed.
package validate

import (
	"fmt"

	"github.com/seoulmaps/placemeta/internal/model"
)

// ValidationError identifies the offending field and the violated
// constraint of a malformed raw record.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate: field %q: %s", e.Field, e.Constraint)
}

func failure(field, constraint string) error {
	return &ValidationError{Field: field, Constraint: constraint}
}

// Home checks the raw home-phase record and produces the typed place.
func Home(raw map[string]any) (model.Place, error) {
	var p model.Place
	var err error

	if p.Name, err = optString(raw, "name"); err != nil {
		return model.Place{}, err
	}
	if p.Address, err = reqString(raw, "address"); err != nil {
		return model.Place{}, err
	}
	if p.BusinessHours, err = reqString(raw, "business_hours"); err != nil {
		return model.Place{}, err
	}

	rows, ok := raw["hours"].([]map[string]any)
	if raw["hours"] != nil && !ok {
		return model.Place{}, failure("hours", "must be a list of day/time entries")
	}
	for i, row := range rows {
		var entry model.HoursEntry
		if entry.Day, err = reqString(row, "day"); err != nil {
			return model.Place{}, prefixed(err, fmt.Sprintf("hours[%d]", i))
		}
		if entry.Time, err = reqString(row, "time"); err != nil {
			return model.Place{}, prefixed(err, fmt.Sprintf("hours[%d]", i))
		}
		p.Hours = append(p.Hours, entry)
	}
	return p, nil
}

// Reviews enforces the per-review invariants on already-parsed records.
// The parser emits typed records, so only value constraints remain: every
// review must carry a non-empty author.
func Reviews(reviews []model.Review) ([]model.Review, error) {
	for i, r := range reviews {
		if r.Author == "" {
			return nil, failure(fmt.Sprintf("reviews[%d].author", i), "required")
		}
	}
	return reviews, nil
}

// Blog checks the raw blog-phase record. A nil raw map means the phase
// produced no blog, which is valid.
func Blog(raw map[string]any) (*model.Blog, error) {
	if raw == nil {
		return nil, nil
	}

	var b model.Blog
	var err error

	if b.Title, err = reqString(raw, "title"); err != nil {
		return nil, err
	}
	if b.URL, err = reqString(raw, "blog_url"); err != nil {
		return nil, err
	}
	if b.Author, err = optString(raw, "author"); err != nil {
		return nil, err
	}
	if b.DateText, err = optString(raw, "date"); err != nil {
		return nil, err
	}
	if b.Content, err = optString(raw, "content"); err != nil {
		return nil, err
	}
	if b.Images, err = optStrings(raw, "images"); err != nil {
		return nil, err
	}
	return &b, nil
}

// Photos checks the raw photo-phase record: every entry needs a non-empty
// URL string and its recorded intrinsic dimensions.
func Photos(raw map[string]any) ([]model.Photo, error) {
	entries, ok := raw["images"].([]map[string]any)
	if raw["images"] != nil && !ok {
		return nil, failure("images", "must be a list of photo entries")
	}

	var photos []model.Photo
	for i, entry := range entries {
		var p model.Photo
		var err error
		if p.URL, err = reqString(entry, "image_url"); err != nil {
			return nil, prefixed(err, fmt.Sprintf("images[%d]", i))
		}
		if p.Width, err = reqInt(entry, "width"); err != nil {
			return nil, prefixed(err, fmt.Sprintf("images[%d]", i))
		}
		if p.Height, err = reqInt(entry, "height"); err != nil {
			return nil, prefixed(err, fmt.Sprintf("images[%d]", i))
		}
		photos = append(photos, p)
	}
	return photos, nil
}

func reqString(raw map[string]any, field string) (string, error) {
	v, present := raw[field]
	if !present || v == nil {
		return "", failure(field, "required")
	}
	s, ok := v.(string)
	if !ok {
		return "", failure(field, "must be a string")
	}
	if s == "" {
		return "", failure(field, "required")
	}
	return s, nil
}

func optString(raw map[string]any, field string) (string, error) {
	v, present := raw[field]
	if !present || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", failure(field, "must be a string")
	}
	return s, nil
}

func optStrings(raw map[string]any, field string) ([]string, error) {
	v, present := raw[field]
	if !present || v == nil {
		return nil, nil
	}
	ss, ok := v.([]string)
	if !ok {
		return nil, failure(field, "must be a list of strings")
	}
	return ss, nil
}

func reqInt(raw map[string]any, field string) (int, error) {
	v, present := raw[field]
	if !present || v == nil {
		return 0, failure(field, "required")
	}
	n, ok := v.(int)
	if !ok {
		return 0, failure(field, "must be an integer")
	}
	return n, nil
}

func prefixed(err error, prefix string) error {
	ve, ok := err.(*ValidationError)
	if !ok {
		return err
	}
	return &ValidationError{
		Field:      prefix + "." + ve.Field,
		Constraint: ve.Constraint,
	}
}
