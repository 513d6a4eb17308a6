package zippyshare

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"zippyfetch/utils"
)

// siteTransport sends every request to a local test server while keeping the
// original Host so the handler can tell the site's hosts apart.
type siteTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (t *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = req.URL.Host
	return t.base.RoundTrip(out)
}

type storedFile struct {
	name    string
	content []byte
}

type receivedUpload struct {
	fieldOrder    []string
	values        map[string]string
	filename      string
	content       []byte
	contentType   string
	contentLength int64
}

// fakeSite imitates the pages and endpoints the client talks to
type fakeSite struct {
	username string
	password string
	serverID string

	mu      sync.Mutex
	files   map[string]storedFile
	uploads []receivedUpload
	hits    map[string]int
	nextID  int
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		username: "alice",
		password: "hunter2",
		serverID: "53",
		files: map[string]storedFile{
			"UfqlE33b": {name: "Screenshot_20230113_040647.png", content: []byte("\x89PNG fake image bytes")},
		},
		hits: make(map[string]int),
	}
}

func (s *fakeSite) hit(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[key]++
}

func (s *fakeSite) hitCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

func (s *fakeSite) lastUpload() receivedUpload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[len(s.uploads)-1]
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host := r.Host
	path := r.URL.Path

	switch {
	case host == "www.zippyshare.com" && path == "/" && r.Method == http.MethodPost:
		s.hit("home")
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "boot-session"})
		fmt.Fprintf(w, "<script type=\"text/javascript\">\nvar uploadId = 'HZ2E4A1F84CDBA4AFA9C09E33CFA0CADB7';\nvar server = 'www%s';\n</script>", s.serverID)

	case host == "www.zippyshare.com" && path == "/services/login":
		s.hit("login")
		s.serveLogin(w, r)

	case host == "www"+s.serverID+".zippyshare.com" && path == "/upload":
		s.hit("upload")
		s.serveUpload(w, r)

	case strings.HasPrefix(path, "/v/"):
		s.hit("page")
		s.serveFilePage(w, r)

	case strings.HasPrefix(path, "/d/"):
		s.hit("direct")
		s.serveDirect(w, r)

	default:
		http.NotFound(w, r)
	}
}

func (s *fakeSite) serveLogin(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie("JSESSIONID"); err != nil || c.Value != "boot-session" {
		http.Error(w, "missing bootstrap cookie", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("login") == s.username && r.PostForm.Get("pass") == s.password {
		http.SetCookie(w, &http.Cookie{Name: "zipname", Value: s.username})
		http.SetCookie(w, &http.Cookie{Name: "ziphash", Value: "f00dfeed"})
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *fakeSite) serveUpload(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	got := receivedUpload{
		values:        make(map[string]string),
		contentType:   r.Header.Get("Content-Type"),
		contentLength: r.ContentLength,
	}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(part)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got.fieldOrder = append(got.fieldOrder, part.FormName())
		if part.FileName() != "" {
			got.filename = part.FileName()
			got.content = data
		} else {
			got.values[part.FormName()] = string(data)
		}
	}

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("Up%dload", s.nextID)
	s.files[id] = storedFile{name: got.values["name"], content: got.content}
	s.uploads = append(s.uploads, got)
	s.mu.Unlock()

	fmt.Fprintf(w, `<input type="text" value="[url=https://www%s.zippyshare.com/v/%s/file.html][img=//www%s.zippyshare.com/scaled/%s/file.html][/img][/url]" onclick="this.select();"/>`,
		s.serverID, id, s.serverID, id)
}

func (s *fakeSite) serveFilePage(w http.ResponseWriter, r *http.Request) {
	fileID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v/"), "/file.html")

	s.mu.Lock()
	file, ok := s.files[fileID]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	fmt.Fprintf(w, "\n\n\n<script type=\"text/javascript\">\n    document.getElementById('dlbutton').href = \"/d/%s/\" + (690628 %% 51245 + 690628 %% 913) + \"/%s\";\n</script>", fileID, file.name)
}

func (s *fakeSite) serveDirect(w http.ResponseWriter, r *http.Request) {
	segs := strings.Split(strings.TrimPrefix(r.URL.Path, "/d/"), "/")
	if len(segs) != 3 || segs[1] != "24843" {
		http.Error(w, "bad token", http.StatusForbidden)
		return
	}

	s.mu.Lock()
	file, ok := s.files[segs[0]]
	s.mu.Unlock()
	if !ok || file.name != segs[2] {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Length", fmt.Sprint(len(file.content)))
	w.Write(file.content)
}

// newSiteClient starts handler and returns a client routed to it
func newSiteClient(t *testing.T, handler http.Handler) *utils.HTTPClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	client, err := utils.NewHTTPClientWithConfig(&utils.HTTPClientConfig{
		Timeout:   5 * time.Second,
		Transport: &siteTransport{target: target, base: http.DefaultTransport},
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}
