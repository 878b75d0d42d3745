package checker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
)

func TestMediaVideoCaptions(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<video controls src="talk.mp4"></video>
</body>`)

	issues := withMessage(NewMedia().Evaluate(snap), "Video has no captions")
	require.Len(t, issues, 1)
	require.Equal(t, accessibility.CategoryMedia, issues[0].Category)
	require.Equal(t, accessibility.SeverityHigh, issues[0].Severity)
}

func TestMediaCaptionTrackAttributes(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<video controls>
  <track kind="captions" src="talk.txt">
</video>
</body>`)

	issues := NewMedia().Evaluate(snap)
	require.Empty(t, withMessage(issues, "Video has no captions"))
	require.Len(t, withMessage(issues, "Unsupported caption format"), 1)
	require.Len(t, withMessage(issues, "no srclang attribute"), 1)
	require.Len(t, withMessage(issues, "no label attribute"), 1)

	snap = mustSnapshot(t, `<body>
<video controls>
  <track kind="captions" src="talk.vtt" srclang="en" label="English">
</video>
</body>`)
	issues = NewMedia().Evaluate(snap)
	require.Empty(t, withMessage(issues, "caption format"))
	require.Empty(t, withMessage(issues, "srclang"))
}

func TestMediaAudioTranscript(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<div><audio controls src="episode.mp3"></audio></div>
</body>`)
	issues := withMessage(NewMedia().Evaluate(snap), "Audio has no transcript")
	require.Len(t, issues, 1)
	require.Equal(t, accessibility.SeverityHigh, issues[0].Severity)

	snap = mustSnapshot(t, `<body>
<div>
  <audio controls src="episode.mp3"></audio>
  <a href="/episode-transcript">Read the transcript</a>
</div>
</body>`)
	require.Empty(t, withMessage(NewMedia().Evaluate(snap), "Audio has no transcript"))
}

func TestMediaAutoplay(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<video autoplay controls src="promo.mp4"></video>
</body>`)
	issues := NewMedia().Evaluate(snap)
	require.Len(t, withMessage(issues, "autoplays with sound"), 1)
	require.Len(t, withMessage(issues, "more than three seconds"), 1)

	snap = mustSnapshot(t, `<body>
<video autoplay muted controls duration="2" src="loop.mp4"></video>
</body>`)
	issues = NewMedia().Evaluate(snap)
	require.Empty(t, withMessage(issues, "autoplay"))
}

func TestMediaControls(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<div><video src="a.mp4"></video></div>
<video src="b.mp4" controls></video>
<div>
  <video src="c.mp4"></video>
  <button aria-label="Play video"></button>
</div>
</body>`)

	issues := withMessage(NewMedia().Evaluate(snap), "no controls")
	require.Len(t, issues, 1)
	require.Equal(t, accessibility.SeverityHigh, issues[0].Severity)
}

func TestMediaAudioDescriptions(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<video controls>
  <track kind="captions" src="a.vtt" srclang="en" label="English">
</video>
<video controls>
  <track kind="captions" src="b.vtt" srclang="en" label="English">
  <track kind="descriptions" src="b-desc.vtt" srclang="en" label="Descriptions">
</video>
</body>`)

	issues := withMessage(NewMedia().Evaluate(snap), "no audio description")
	require.Len(t, issues, 1)
}

func TestMediaEmbeds(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<iframe src="https://www.youtube.com/embed/abc123"></iframe>
<iframe src="https://maps.example.com/widget"></iframe>
<embed type="video/mp4" src="clip.mp4">
</body>`)

	issues := NewMedia().Evaluate(snap)
	require.Len(t, withMessage(issues, "Embedded media has no title"), 1)
	require.Len(t, withMessage(issues, "no fallback content"), 1)
	require.Len(t, withMessage(issues, "no text alternative"), 1)
}

func TestMediaLiveStreamCaptions(t *testing.T) {
	t.Parallel()

	snap := mustSnapshot(t, `<body>
<div class="live-stream"><video controls src="feed.mp4"></video></div>
<div class="live-stream">
  <video controls src="feed2.mp4"></video>
  <p>Closed captions are available during the broadcast.</p>
</div>
</body>`)

	issues := withMessage(NewMedia().Evaluate(snap), "real-time captions")
	require.Len(t, issues, 1)
}
