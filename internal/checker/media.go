package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/snapshot"
)

// Media validates audio and video accessibility: captions, transcripts,
// autoplay behavior, controls, and embedded players.
type Media struct{}

// NewMedia builds the media module.
func NewMedia() *Media { return &Media{} }

func (c *Media) Category() accessibility.Category { return accessibility.CategoryMedia }

func (c *Media) Weight() float64 { return 0.15 }

func (c *Media) Rules() []Rule {
	return []Rule{
		{ID: "media-captions", Description: "Videos provide caption tracks in a supported format"},
		{ID: "media-transcript", Description: "Audio elements have transcripts nearby"},
		{ID: "media-autoplay", Description: "Media does not autoplay with sound or without controls"},
		{ID: "media-controls", Description: "Media elements expose native or custom controls"},
		{ID: "media-descriptions", Description: "Visual videos carry audio-description tracks"},
		{ID: "media-embeds", Description: "Embedded players have titles and fallback content"},
		{ID: "media-poster", Description: "Videos provide a poster or text alternative"},
		{ID: "media-live", Description: "Live streams advertise real-time captions"},
	}
}

var (
	captionFormats = map[string]struct{}{".vtt": {}, ".srt": {}, ".webvtt": {}}
	mediaDomains   = []string{
		"youtube.com", "youtu.be", "vimeo.com", "dailymotion.com",
		"twitch.tv", "soundcloud.com", "spotify.com",
	}
	mediaExtensions  = []string{".mp4", ".avi", ".mov", ".wmv", ".mp3", ".wav", ".ogg"}
	controlKeywords  = []string{"play", "pause", "stop", "volume", "mute"}
	liveCaptionHints = []string{"live caption", "real-time caption", "closed caption"}
	transcriptTokens = []string{"transcript", "script"}
)

func (c *Media) Evaluate(snap *snapshot.Snapshot) []accessibility.Issue {
	doc := snap.Doc()
	var issues []accessibility.Issue
	issues = append(issues, c.checkCaptions(doc)...)
	issues = append(issues, c.checkTranscripts(doc)...)
	issues = append(issues, c.checkAutoplay(doc)...)
	issues = append(issues, c.checkControls(doc)...)
	issues = append(issues, c.checkDescriptions(doc)...)
	issues = append(issues, c.checkEmbeds(doc)...)
	issues = append(issues, c.checkPosters(doc)...)
	issues = append(issues, c.checkLiveCaptions(doc)...)
	return issues
}

func (c *Media) checkCaptions(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("video").Each(func(_ int, video *goquery.Selection) {
		captionTracks := video.Find("track").FilterFunction(func(_ int, track *goquery.Selection) bool {
			kind, _ := attrTrimmed(track, "kind")
			return kind == "captions" || kind == "subtitles"
		})

		if captionTracks.Length() == 0 {
			issues = append(issues, newIssue(
				accessibility.CategoryMedia,
				accessibility.SeverityHigh,
				"Video has no captions",
				"The video element has no caption track",
				"Add a <track kind='captions' src='captions.vtt'> element",
				video,
				"WCAG 2.1 - 1.2.2 Captions (Prerecorded)",
			))
			return
		}

		captionTracks.Each(func(_ int, track *goquery.Selection) {
			if src, _ := attrTrimmed(track, "src"); src != "" {
				ext := ""
				if idx := strings.LastIndex(src, "."); idx >= 0 {
					ext = strings.ToLower(src[idx:])
				}
				if _, ok := captionFormats[ext]; !ok {
					issues = append(issues, newIssue(
						accessibility.CategoryMedia,
						accessibility.SeverityMedium,
						fmt.Sprintf("Unsupported caption format: %q", ext),
						"Caption files should use the WebVTT (.vtt) format",
						"Convert the caption file to WebVTT",
						track,
						"WCAG 2.1 - 1.2.2 Captions (Prerecorded)",
					))
				}
			}

			if v, _ := attrTrimmed(track, "srclang"); v == "" {
				issues = append(issues, newIssue(
					accessibility.CategoryMedia,
					accessibility.SeverityMedium,
					"track element has no srclang attribute",
					"The caption track does not declare its language",
					"Add a srclang attribute to the track element (for example srclang='en')",
					track,
					"WCAG 2.1 - 1.2.2 Captions (Prerecorded)",
				))
			}

			if v, _ := attrTrimmed(track, "label"); v == "" {
				issues = append(issues, newIssue(
					accessibility.CategoryMedia,
					accessibility.SeverityLow,
					"track element has no label attribute",
					"The caption track has no human-readable label",
					"Add a label attribute to the track element",
					track,
					"WCAG 2.1 - 1.2.2 Captions (Prerecorded)",
				))
			}
		})
	})
	return issues
}

func (c *Media) checkTranscripts(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("audio").Each(func(_ int, audio *goquery.Selection) {
		if hasTranscriptNearby(audio) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryMedia,
			accessibility.SeverityHigh,
			"Audio has no transcript",
			"The audio element has no transcript or text alternative",
			"Provide a text transcript of the audio content or link to one",
			audio,
			"WCAG 2.1 - 1.2.1 Audio-only and Video-only (Prerecorded)",
		))
	})
	return issues
}

func (c *Media) checkAutoplay(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("video[autoplay], audio[autoplay]").Each(func(_ int, media *goquery.Selection) {
		if _, muted := media.Attr("muted"); !muted {
			issues = append(issues, newIssue(
				accessibility.CategoryMedia,
				accessibility.SeverityHigh,
				"Media autoplays with sound",
				"Media with audio starts automatically, which disrupts screen reader users",
				"Remove autoplay, or add the muted attribute and user controls",
				media,
				"WCAG 2.1 - 1.4.2 Audio Control",
			))
		}

		// Without metadata we assume the clip runs longer than three
		// seconds unless a duration attribute says otherwise.
		if d, ok := attrTrimmed(media, "duration"); ok {
			if seconds, err := strconv.ParseFloat(d, 64); err == nil && seconds <= 3 {
				return
			}
		}
		issues = append(issues, newIssue(
			accessibility.CategoryMedia,
			accessibility.SeverityMedium,
			"Media autoplays for more than three seconds",
			"Autoplaying media longer than three seconds needs a pause mechanism",
			"Provide media controls or disable autoplay",
			media,
			"WCAG 2.1 - 1.4.2 Audio Control",
		))
	})
	return issues
}

func (c *Media) checkControls(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("video, audio").Each(func(_ int, media *goquery.Selection) {
		if _, hasControls := media.Attr("controls"); hasControls {
			return
		}
		if hasCustomControls(media) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryMedia,
			accessibility.SeverityHigh,
			"Media element has no controls",
			"The media element offers no playback controls",
			"Add the controls attribute or keyboard-accessible custom controls",
			media,
			"WCAG 2.1 - 2.1.1 Keyboard",
		))
	})
	return issues
}

func (c *Media) checkDescriptions(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("video").Each(func(_ int, video *goquery.Selection) {
		hasDescriptions := video.Find("track").FilterFunction(func(_ int, track *goquery.Selection) bool {
			kind, _ := attrTrimmed(track, "kind")
			return kind == "descriptions"
		}).Length() > 0
		if hasDescriptions {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryMedia,
			accessibility.SeverityMedium,
			"Video has no audio description",
			"A video conveying visual information lacks an audio-description track",
			"Add a <track kind='descriptions'> element with narrated descriptions",
			video,
			"WCAG 2.1 - 1.2.5 Audio Description (Prerecorded)",
		))
	})
	return issues
}

func (c *Media) checkEmbeds(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue

	doc.Find("iframe").Each(func(_ int, iframe *goquery.Selection) {
		src, _ := iframe.Attr("src")
		if !isMediaIframe(src) {
			return
		}

		if v, _ := attrTrimmed(iframe, "title"); v == "" {
			issues = append(issues, newIssue(
				accessibility.CategoryMedia,
				accessibility.SeverityMedium,
				"Embedded media has no title",
				"The media iframe has no descriptive title attribute",
				"Add a title attribute describing the embedded media",
				iframe,
				"WCAG 2.1 - 2.4.1 Bypass Blocks",
			))
		}

		if strings.TrimSpace(iframe.Text()) == "" {
			issues = append(issues, newIssue(
				accessibility.CategoryMedia,
				accessibility.SeverityLow,
				"Embedded media has no fallback content",
				"The iframe shows nothing when frames are unsupported",
				"Provide fallback content or a direct link inside the iframe element",
				iframe,
				"WCAG 2.1 - 1.1.1 Non-text Content",
			))
		}
	})

	doc.Find("embed, object").Each(func(_ int, embed *goquery.Selection) {
		if !isMediaEmbed(embed) {
			return
		}
		if hasAnyAttr(embed, "alt", "title") || strings.TrimSpace(embed.Text()) != "" {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryMedia,
			accessibility.SeverityMedium,
			"Embedded media has no text alternative",
			"The embed/object element has no alternative text or description",
			"Provide alternative text or a description of the media",
			embed,
			"WCAG 2.1 - 1.1.1 Non-text Content",
		))
	})

	return issues
}

func (c *Media) checkPosters(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("video").Each(func(_ int, video *goquery.Selection) {
		if _, ok := video.Attr("poster"); ok {
			return
		}
		if hasTextAlternativeNearby(video) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryMedia,
			accessibility.SeverityLow,
			"Video has no poster image",
			"The video provides no preview image",
			"Add a poster attribute with a preview image",
			video,
			"WCAG 2.1 - 1.1.1 Non-text Content",
		))
	})
	return issues
}

func (c *Media) checkLiveCaptions(doc *goquery.Document) []accessibility.Issue {
	var issues []accessibility.Issue
	doc.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		lower := strings.ToLower(class)
		if !strings.Contains(lower, "live") && !strings.Contains(lower, "stream") {
			return
		}
		if sel.Find("video, audio, iframe").Length() == 0 {
			return
		}
		if hasLiveCaptionHint(sel) {
			return
		}
		issues = append(issues, newIssue(
			accessibility.CategoryMedia,
			accessibility.SeverityMedium,
			"Live media may lack real-time captions",
			"No real-time captioning was detected for the live stream",
			"Provide real-time captions for live content",
			sel,
			"WCAG 2.1 - 1.2.4 Captions (Live)",
		))
	})
	return issues
}

func hasTranscriptNearby(audio *goquery.Selection) bool {
	parent := audio.Parent()
	if parent.Length() == 0 {
		return false
	}
	text := strings.ToLower(parent.Text())
	for _, token := range transcriptTokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	found := false
	parent.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		label := strings.ToLower(link.Text() + " " + href)
		for _, token := range transcriptTokens {
			if strings.Contains(label, token) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func hasCustomControls(media *goquery.Selection) bool {
	parent := media.Parent()
	if parent.Length() == 0 {
		return false
	}
	found := false
	parent.Find("button").EachWithBreak(func(_ int, button *goquery.Selection) bool {
		ariaLabel, _ := button.Attr("aria-label")
		title, _ := button.Attr("title")
		label := strings.ToLower(button.Text() + " " + ariaLabel + " " + title)
		for _, keyword := range controlKeywords {
			if strings.Contains(label, keyword) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func isMediaIframe(src string) bool {
	lower := strings.ToLower(src)
	for _, domain := range mediaDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

func isMediaEmbed(embed *goquery.Selection) bool {
	if typ, _ := attrTrimmed(embed, "type"); strings.Contains(typ, "video") || strings.Contains(typ, "audio") {
		return true
	}
	src, _ := embed.Attr("src")
	data, _ := embed.Attr("data")
	lower := strings.ToLower(src + data)
	for _, ext := range mediaExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

func hasTextAlternativeNearby(media *goquery.Selection) bool {
	parent := media.Parent()
	if parent.Length() == 0 {
		return false
	}
	found := false
	parent.Children().EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if child.Get(0) == media.Get(0) {
			return true
		}
		if len(strings.TrimSpace(child.Text())) > 50 {
			found = true
			return false
		}
		return true
	})
	return found
}

func hasLiveCaptionHint(sel *goquery.Selection) bool {
	class, _ := sel.Attr("class")
	content := strings.ToLower(sel.Text() + " " + class)
	for _, hint := range liveCaptionHints {
		if strings.Contains(content, hint) {
			return true
		}
	}
	return false
}
