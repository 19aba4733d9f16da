package image

import "context"

// Sourcer resolves a subject to local image files: search providers
// supply candidate URLs and the downloader fetches them.
type Sourcer struct {
	chain      *FallbackChain
	downloader *Downloader
}

// NewSourcer combines a provider chain and a downloader.
func NewSourcer(chain *FallbackChain, downloader *Downloader) *Sourcer {
	return &Sourcer{chain: chain, downloader: downloader}
}

// Source returns up to max local image paths for the subject. It fails
// with NoContentError when no provider had usable results or every
// download failed.
func (s *Sourcer) Source(ctx context.Context, subject string, max int) ([]string, error) {
	urls, err := s.chain.URLs(ctx, subject, max)
	if err != nil {
		return nil, err
	}
	return s.downloader.DownloadAll(ctx, urls, subject)
}
