// Package parse turns the rendered text of one review card into a typed
// review record. It is pure and line-oriented: the card layout is a fixed
// contract, so each field is read from a fixed line range and a missing
// pattern yields a nil field rather than an error.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/seoulmaps/placemeta/internal/model"
)

const (
	moreMarker      = "더보기"
	tagAnchor       = "음식이 맛있어요"
	extraReviewText = "개의 리뷰가 더 있습니다"
	visitCountText  = "번째 방문"
)

// visitInfoTokens is the fixed vocabulary of visit-context tokens. A line
// in the visit-info scan range counts as visit info if it contains any.
var visitInfoTokens = []string{"방문", "예약", "대기", "입장", "일상", "지인", "동료"}

var (
	profileRe   = regexp.MustCompile(`리뷰 (\d+)사진 (\d+)팔로워 (\d+)`)
	tagRunRe    = regexp.MustCompile(`[가-힣A-Za-z0-9\s]+`)
	overflowRe  = regexp.MustCompile(`^\+?\d+$`)
	visitDateRe = regexp.MustCompile(`^\d{4}년`)
	receiptRe   = regexp.MustCompile(`영수증|인증`)
)

// Review parses the multi-line rendered text of one review card.
// Every field extraction is independent and failure-tolerant.
func Review(raw string) model.Review {
	lines := nonEmptyLines(raw)

	var r model.Review
	if len(lines) > 0 {
		r.Author = strings.TrimSpace(lines[0])
	}

	r.Profile = parseProfile(lines)
	r.Follow = parseFollow(lines)
	r.VisitInfo = parseVisitInfo(lines)
	r.Body, r.ReviewMore = parseBody(lines)
	r.Tags = parseTags(lines)
	r.ExtraReviewLine = firstLine(lines, func(l string) bool { return strings.Contains(l, extraReviewText) })
	r.VisitDate = firstLine(lines, func(l string) bool { return visitDateRe.MatchString(l) })
	r.VisitCount = firstLine(lines, func(l string) bool { return strings.Contains(l, visitCountText) })
	r.Receipt = firstLine(lines, receiptRe.MatchString)
	return r
}

func nonEmptyLines(raw string) []string {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// parseProfile matches the reviewer counters on line 1. A non-match leaves
// all three nil: absence is distinct from zero.
func parseProfile(lines []string) model.Profile {
	if len(lines) < 2 {
		return model.Profile{}
	}
	m := profileRe.FindStringSubmatch(lines[1])
	if m == nil {
		return model.Profile{}
	}
	return model.Profile{
		Review:   atoiPtr(m[1]),
		Photo:    atoiPtr(m[2]),
		Follower: atoiPtr(m[3]),
	}
}

func parseFollow(lines []string) *bool {
	follow := false
	for _, l := range head(lines, 4) {
		if strings.Contains(l, "follow") {
			follow = true
			break
		}
	}
	return &follow
}

// parseVisitInfo scans lines[2:6] for the first line containing a
// visit-context token.
func parseVisitInfo(lines []string) *string {
	for _, l := range slice(lines, 2, 6) {
		for _, tok := range visitInfoTokens {
			if strings.Contains(l, tok) {
				v := l
				return &v
			}
		}
	}
	return nil
}

// parseBody joins lines from index 4 onward, cutting before the first
// "show more" line. ReviewMore reflects the marker anywhere in the card.
func parseBody(lines []string) (string, bool) {
	var body []string
	for _, l := range slice(lines, 4, len(lines)) {
		if strings.Contains(l, moreMarker) {
			break
		}
		body = append(body, l)
	}
	more := false
	for _, l := range lines {
		if strings.Contains(l, moreMarker) {
			more = true
			break
		}
	}
	return strings.Join(body, " "), more
}

// parseTags extracts tag phrases from the first line carrying either a tag
// overflow marker ("+N") or the known tag anchor. The extraction keeps
// maximal runs of Hangul/Latin/digit/space characters, so the "+" of an
// overflow marker is stripped before filtering; bare counter runs are
// dropped along with literal "+N" strings.
func parseTags(lines []string) []string {
	var tagLine string
	for _, l := range lines {
		if strings.Contains(l, "+") || strings.Contains(l, tagAnchor) {
			tagLine = l
			break
		}
	}
	if tagLine == "" {
		return nil
	}

	var tags []string
	for _, run := range tagRunRe.FindAllString(tagLine, -1) {
		t := strings.TrimSpace(run)
		if t == "" || overflowRe.MatchString(t) {
			continue
		}
		tags = append(tags, t)
	}
	return tags
}

func firstLine(lines []string, match func(string) bool) *string {
	for _, l := range lines {
		if match(l) {
			v := l
			return &v
		}
	}
	return nil
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func head(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}

func slice(lines []string, from, to int) []string {
	if from >= len(lines) {
		return nil
	}
	if to > len(lines) {
		to = len(lines)
	}
	return lines[from:to]
}
