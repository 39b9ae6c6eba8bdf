package crawl

// Frontier is a FIFO queue of URLs waiting to be visited.
// It does not deduplicate; a URL may be queued several times and callers
// check a VisitedSet when it comes off the queue.
type Frontier struct {
	queue []string
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Push appends url to the back of the queue.
func (f *Frontier) Push(url string) {
	f.queue = append(f.queue, url)
}

// Pop removes and returns the URL at the front of the queue.
// Returns false if the queue is empty.
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return url, true
}

// Len returns the number of queued URLs, duplicates included.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// VisitedSet records the URLs fetched during one crawl. It only grows.
type VisitedSet struct {
	urls map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}

// Add marks url as visited.
func (v *VisitedSet) Add(url string) {
	v.urls[url] = struct{}{}
}

// Contains reports whether url has been visited.
func (v *VisitedSet) Contains(url string) bool {
	_, ok := v.urls[url]
	return ok
}

// Len returns the number of visited URLs.
func (v *VisitedSet) Len() int {
	return len(v.urls)
}
