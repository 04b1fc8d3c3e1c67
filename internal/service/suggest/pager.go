package suggest

import (
	"github.com/kapu/video-qna-go/internal/constants"
	"github.com/kapu/video-qna-go/internal/domain"
)

// Pager slides a fixed-size window over a suggestion list, wrapping at both
// ends. With a list no longer than the window, paging is a no-op.
type Pager struct {
	videos     []domain.SuggestedVideo
	windowSize int
	startIndex int
}

func NewPager(videos []domain.SuggestedVideo) *Pager {
	return &Pager{
		videos:     videos,
		windowSize: constants.Suggestions.WindowSize,
	}
}

// Window returns the currently visible slice. The result is a copy.
func (p *Pager) Window() []domain.SuggestedVideo {
	if len(p.videos) <= p.windowSize {
		out := make([]domain.SuggestedVideo, len(p.videos))
		copy(out, p.videos)
		return out
	}

	end := p.startIndex + p.windowSize
	if end > len(p.videos) {
		end = len(p.videos)
	}
	out := make([]domain.SuggestedVideo, end-p.startIndex)
	copy(out, p.videos[p.startIndex:end])
	return out
}

// Next advances the window by one, wrapping to the start once the window
// reaches the end of the list.
func (p *Pager) Next() {
	if len(p.videos) <= p.windowSize {
		return
	}
	p.startIndex++
	if p.startIndex > len(p.videos)-p.windowSize {
		p.startIndex = 0
	}
}

// Prev moves the window back by one, wrapping to the last full window at the
// front of the list.
func (p *Pager) Prev() {
	if len(p.videos) <= p.windowSize {
		return
	}
	p.startIndex--
	if p.startIndex < 0 {
		p.startIndex = len(p.videos) - p.windowSize
	}
}

func (p *Pager) StartIndex() int { return p.startIndex }

func (p *Pager) Len() int { return len(p.videos) }
