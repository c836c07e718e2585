package model

import "time"

// Place holds the listing metadata scraped from the home tab.
type Place struct {
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	BusinessHours string       `json:"business_hours"`
	Hours         []HoursEntry `json:"hours"`
}

// HoursEntry is one day/time row of the per-day schedule. Both fields are
// free text; day labels on the source page are not canonical weekday names.
type HoursEntry struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// Profile holds the reviewer's counters from the review card header.
// A nil pointer means the counter was absent, which is distinct from zero.
type Profile struct {
	Review   *int `json:"review"`
	Photo    *int `json:"photo"`
	Follower *int `json:"follower"`
}

// Review is one parsed review card. Author is the only required field;
// everything else is independently optional.
type Review struct {
	Author          string   `json:"author"`
	Profile         Profile  `json:"profile"`
	Follow          *bool    `json:"follow"`
	VisitInfo       *string  `json:"visit_info"`
	Body            string   `json:"body"`
	Tags            []string `json:"tags"`
	ReviewMore      bool     `json:"review_more"`
	ExtraReviewLine *string  `json:"extra_review_line"`
	VisitDate       *string  `json:"visit_date"`
	VisitCount      *string  `json:"visit_count"`
	Receipt         *string  `json:"receipt"`
}

// Blog is the first linked blog post of the listing. DateText carries the
// raw publish date text; it is parsed by the persistence layer and a parse
// failure there aborts the whole write.
type Blog struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	DateText string   `json:"date"`
	Content  string   `json:"content"`
	URL      string   `json:"blog_url"`
	Images   []string `json:"images"`
}

// Photo is one size-qualifying photo from the photos tab, with the
// intrinsic dimensions recorded at capture time.
type Photo struct {
	URL    string `json:"image_url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Graph is the full record graph produced by one crawl. It is persisted
// as a single transaction or not at all.
type Graph struct {
	Place   Place    `json:"place"`
	Reviews []Review `json:"reviews"`
	Blog    *Blog    `json:"blog,omitempty"`
	Photos  []Photo  `json:"photos"`
}

// PlaceRecord is a persisted place header as read back from storage.
type PlaceRecord struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	BusinessHours string    `json:"business_hours"`
	CreatedAt     time.Time `json:"created_at"`
}

// BlogDateLayout is the fixed publish-date format used by the source pages.
const BlogDateLayout = "2006. 01. 02. 15:04"
