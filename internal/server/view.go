package server

import (
	"html/template"
	"net/http"

	"github.com/kapu/video-qna-go/internal/constants"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexTmpl.Execute(w, struct {
		Presets    []string
		WindowSize int
	}{
		Presets:    constants.PresetQuestions,
		WindowSize: constants.Suggestions.WindowSize,
	})
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Video Q&amp;A</title>
  <style>
    :root{
      --bg: #0d1117;
      --panel: #111827;
      --border: #1f2937;
      --fg: #e5e7eb;
      --muted: #9ca3af;
      --accent: #22c55e;
      --danger: #ef4444;
    }
    *{ box-sizing: border-box }
    body { margin:0; padding:24px; background:var(--bg); color:var(--fg); font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial }
    .wrap { max-width: 920px; margin: 0 auto }
    h1 { margin:0 0 16px; font-weight:700 }
    .panel { border:1px solid var(--border); border-radius:10px; background:var(--panel); padding:16px; margin-bottom:16px }
    .row { display:flex; gap:8px }
    input[type=text] { flex:1; background:transparent; border:1px solid var(--border); color:var(--fg); padding:10px 12px; border-radius:6px; font-size:14px }
    input[type=text]:disabled { opacity:.5 }
    button { background:transparent; border:1px solid var(--border); color:var(--fg); padding:10px 14px; border-radius:6px; font-size:14px; cursor:pointer }
    button:hover:not(:disabled) { border-color:var(--accent) }
    button:disabled { opacity:.5; cursor:default }
    .player { position:relative; width:100%; aspect-ratio:16/9; background:#000; border-radius:8px; overflow:hidden }
    .player iframe { position:absolute; inset:0; width:100%; height:100%; border:0 }
    .placeholder { position:absolute; inset:0; display:flex; align-items:center; justify-content:center; color:var(--muted); font-size:14px }
    .presets { display:flex; flex-wrap:wrap; gap:8px; margin-top:10px }
    .presets button { font-size:13px; padding:6px 10px }
    .answer { margin-top:12px; padding:12px; border:1px solid var(--border); border-radius:6px; min-height:48px; white-space:pre-wrap; font-size:14px; line-height:1.5 }
    .answer.muted { color:var(--muted) }
    .carousel { display:flex; align-items:center; gap:10px }
    .cards { display:grid; grid-template-columns:repeat({{.WindowSize}}, 1fr); gap:10px; flex:1 }
    .card { border:1px solid var(--border); border-radius:8px; overflow:hidden; cursor:pointer; background:var(--bg) }
    .card img { width:100%; aspect-ratio:16/9; object-fit:cover; display:block; background:#000 }
    .card .title { padding:8px; font-size:13px; line-height:1.4; max-height:3.8em; overflow:hidden }
    .card.skeleton { pointer-events:none }
    .card.skeleton .thumb { width:100%; aspect-ratio:16/9; background:var(--border); animation:pulse 1.2s ease-in-out infinite }
    .card.skeleton .title { height:2.8em; margin:8px; background:var(--border); border-radius:4px; animation:pulse 1.2s ease-in-out infinite }
    @keyframes pulse { 0%,100%{opacity:1} 50%{opacity:.35} }
    .empty { color:var(--muted); font-size:14px; padding:16px; text-align:center; flex:1 }
    #toasts { position:fixed; right:16px; bottom:16px; display:flex; flex-direction:column; gap:8px }
    .toast { padding:10px 14px; border-radius:6px; font-size:14px; color:#fff; background:var(--danger); box-shadow:0 4px 12px rgba(0,0,0,.4) }
    .toast.ok { background:var(--accent); color:#052e16 }
  </style>
</head>
<body>
<div class="wrap">
  <h1>Video Q&amp;A</h1>

  <div class="panel">
    <div class="row">
      <input id="url-input" type="text" placeholder="Paste a YouTube video URL" />
      <button id="load-btn">Load video</button>
    </div>
    <div class="player" style="margin-top:12px">
      <div id="player-slot"></div>
      <div id="player-placeholder" class="placeholder">No video loaded</div>
    </div>
  </div>

  <div class="panel">
    <div class="row">
      <input id="question-input" type="text" placeholder="Ask a question about the video" />
      <button id="ask-btn">Ask</button>
    </div>
    <div class="presets">
      {{range .Presets}}<button class="preset" data-q="{{.}}">{{.}}</button>
      {{end}}
    </div>
    <div id="answer" class="answer muted">The answer will appear here.</div>
  </div>

  <div class="panel">
    <div class="carousel">
      <button id="prev-btn" hidden>&#8592;</button>
      <div id="cards" class="cards"></div>
      <button id="next-btn" hidden>&#8594;</button>
    </div>
  </div>
</div>
<div id="toasts"></div>

<script>
(function () {
  'use strict';

  var WINDOW_SIZE = {{.WindowSize}};

  // Single source of truth for the page.
  var state = {
    videoId: null,
    loadingVideo: false,
    loadingAnswer: false,
    answer: '',
    suggestions: [],
    suggestionsLoading: false,
    startIndex: 0
  };

  var urlInput = document.getElementById('url-input');
  var loadBtn = document.getElementById('load-btn');
  var playerSlot = document.getElementById('player-slot');
  var playerPlaceholder = document.getElementById('player-placeholder');
  var questionInput = document.getElementById('question-input');
  var askBtn = document.getElementById('ask-btn');
  var answerEl = document.getElementById('answer');
  var cardsEl = document.getElementById('cards');
  var prevBtn = document.getElementById('prev-btn');
  var nextBtn = document.getElementById('next-btn');

  function toast(message, ok) {
    var el = document.createElement('div');
    el.className = ok ? 'toast ok' : 'toast';
    el.textContent = message;
    document.getElementById('toasts').appendChild(el);
    setTimeout(function () { el.remove(); }, 4000);
  }

  function extractVideoId(text) {
    var patterns = [
      /[?&]v=([A-Za-z0-9_-]{11})/,
      /youtu\.be\/([A-Za-z0-9_-]{11})/,
      /\/embed\/([A-Za-z0-9_-]{11})/,
      /\/shorts\/([A-Za-z0-9_-]{11})/
    ];
    for (var i = 0; i < patterns.length; i++) {
      var m = text.match(patterns[i]);
      if (m) return m[1];
    }
    return null;
  }

  function detailOf(body, fallback) {
    if (body && typeof body.detail === 'string' && body.detail) return body.detail;
    return fallback;
  }

  function renderPlayer() {
    if (state.videoId) {
      playerPlaceholder.hidden = true;
      playerSlot.innerHTML = '<iframe src="https://www.youtube.com/embed/' + state.videoId +
        '" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe>';
    } else {
      playerSlot.innerHTML = '';
      playerPlaceholder.hidden = false;
    }
  }

  function renderAnswer() {
    if (state.loadingAnswer) {
      answerEl.className = 'answer muted';
      answerEl.textContent = 'Thinking…';
    } else if (state.answer) {
      answerEl.className = 'answer';
      answerEl.textContent = state.answer;
    } else {
      answerEl.className = 'answer muted';
      answerEl.textContent = 'The answer will appear here.';
    }
  }

  function renderControls() {
    var busy = state.loadingVideo || state.loadingAnswer;
    loadBtn.disabled = busy;
    urlInput.disabled = busy;
    askBtn.disabled = busy;
    questionInput.disabled = busy;
    var presets = document.querySelectorAll('.preset');
    for (var i = 0; i < presets.length; i++) presets[i].disabled = busy;
  }

  function renderSuggestions() {
    cardsEl.innerHTML = '';
    var paging = state.suggestions.length > WINDOW_SIZE;
    prevBtn.hidden = !paging;
    nextBtn.hidden = !paging;

    if (state.suggestionsLoading) {
      for (var i = 0; i < WINDOW_SIZE; i++) {
        var sk = document.createElement('div');
        sk.className = 'card skeleton';
        sk.innerHTML = '<div class="thumb"></div><div class="title"></div>';
        cardsEl.appendChild(sk);
      }
      return;
    }

    if (state.suggestions.length === 0) {
      var empty = document.createElement('div');
      empty.className = 'empty';
      empty.textContent = 'No suggestions available';
      cardsEl.appendChild(empty);
      return;
    }

    var visible = state.suggestions.slice(state.startIndex, state.startIndex + WINDOW_SIZE);
    visible.forEach(function (video) {
      var card = document.createElement('div');
      card.className = 'card';

      var img = document.createElement('img');
      img.src = video.thumbnail;
      img.alt = video.title;
      img.onerror = function () {
        this.onerror = null;
        this.src = 'https://img.youtube.com/vi/' + video.id + '/mqdefault.jpg';
      };

      var title = document.createElement('div');
      title.className = 'title';
      title.textContent = video.title;

      card.appendChild(img);
      card.appendChild(title);
      card.addEventListener('click', function () {
        urlInput.value = video.url;
        submitVideo();
      });
      cardsEl.appendChild(card);
    });
  }

  function render() {
    renderPlayer();
    renderAnswer();
    renderControls();
    renderSuggestions();
  }

  function fetchSuggestions() {
    state.suggestionsLoading = true;
    state.startIndex = 0;
    render();
    var qs = state.videoId ? '?video_id=' + encodeURIComponent(state.videoId) : '';
    fetch('/suggested-videos' + qs)
      .then(function (res) { return res.json(); })
      .then(function (body) {
        state.suggestions = (body && body.videos) || [];
      })
      .catch(function () {
        state.suggestions = [];
      })
      .then(function () {
        state.suggestionsLoading = false;
        render();
      });
  }

  function submitVideo() {
    if (state.loadingVideo || state.loadingAnswer) return;
    var url = urlInput.value.trim();
    if (!url) {
      toast('Please enter a video URL');
      return;
    }
    var id = extractVideoId(url);
    if (!id) {
      toast('That does not look like a YouTube video URL');
      return;
    }

    state.loadingVideo = true;
    render();

    fetch('/process-video', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify({ video_url: url })
    })
      .then(function (res) {
        return res.json().catch(function () { return null; }).then(function (body) {
          if (!res.ok || !body || body.success !== true) {
            throw new Error(detailOf(body, 'Failed to process the video'));
          }
          return body;
        });
      })
      .then(function (body) {
        var changed = state.videoId !== id;
        state.videoId = id;
        state.answer = '';
        urlInput.value = '';
        toast(body.message || 'Video ready', true);
        if (changed) fetchSuggestions();
      })
      .catch(function (err) {
        toast(err.message || 'Failed to process the video');
      })
      .then(function () {
        state.loadingVideo = false;
        render();
      });
  }

  function submitQuestion(question) {
    if (state.loadingVideo || state.loadingAnswer) return;
    question = (question || '').trim();
    if (!question) return;

    questionInput.value = '';
    state.answer = '';
    state.loadingAnswer = true;
    render();

    fetch('/ask-question', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify({ question: question })
    })
      .then(function (res) {
        return res.json().catch(function () { return null; }).then(function (body) {
          if (!res.ok) throw new Error(detailOf(body, 'Failed to get an answer'));
          if (!body || !body.answer) throw new Error('no answer received');
          return body.answer;
        });
      })
      .then(function (answer) {
        state.answer = answer;
      })
      .catch(function (err) {
        toast(err.message || 'Failed to get an answer');
      })
      .then(function () {
        state.loadingAnswer = false;
        render();
      });
  }

  loadBtn.addEventListener('click', submitVideo);
  urlInput.addEventListener('keydown', function (e) {
    if (e.key === 'Enter' && !e.shiftKey && !e.ctrlKey && !e.altKey && !e.metaKey) submitVideo();
  });

  askBtn.addEventListener('click', function () { submitQuestion(questionInput.value); });
  questionInput.addEventListener('keydown', function (e) {
    if (e.key === 'Enter' && !e.shiftKey && !e.ctrlKey && !e.altKey && !e.metaKey) {
      submitQuestion(questionInput.value);
    }
  });

  var presets = document.querySelectorAll('.preset');
  for (var i = 0; i < presets.length; i++) {
    presets[i].addEventListener('click', function () {
      submitQuestion(this.getAttribute('data-q'));
    });
  }

  nextBtn.addEventListener('click', function () {
    if (state.suggestions.length <= WINDOW_SIZE) return;
    state.startIndex += 1;
    if (state.startIndex > state.suggestions.length - WINDOW_SIZE) state.startIndex = 0;
    renderSuggestions();
  });
  prevBtn.addEventListener('click', function () {
    if (state.suggestions.length <= WINDOW_SIZE) return;
    state.startIndex -= 1;
    if (state.startIndex < 0) state.startIndex = state.suggestions.length - WINDOW_SIZE;
    renderSuggestions();
  });

  render();
  fetchSuggestions();
})();
</script>
</body>
</html>`))
