package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	headerHeight = 40
	screenWidth  = 960
	screenHeight = 480
	minimapScale = 2
	pollInterval = 5 * time.Second
)

// Player color slots, drawn as swatches in the report panel
var slotColors = []color.RGBA{
	{0, 0, 221, 255},     // Blue
	{255, 0, 0, 255},     // Red
	{0, 255, 0, 255},     // Green
	{255, 255, 0, 255},   // Yellow
	{0, 255, 255, 255},   // Aqua
	{255, 0, 255, 255},   // Purple
	{233, 233, 233, 255}, // Grey
	{255, 130, 1, 255},   // Orange
}

// ReportListItem represents a stored report from the server
type ReportListItem struct {
	ID          string    `json:"id"`
	Replay      string    `json:"replay"`
	Minimap     string    `json:"minimap,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
	OK          bool      `json:"ok"`
	Errors      []string  `json:"errors,omitempty"`
}

// Record is the stored outcome of processing a recorded game
type Record struct {
	ID     string       `json:"id"`
	Replay string       `json:"replay"`
	Report *MatchReport `json:"report,omitempty"`
	Errors []string     `json:"errors,omitempty"`
}

// MatchReport mirrors the report fields the viewer displays
type MatchReport struct {
	Duration    string `json:"duracion_partida"`
	PointOfView string `json:"punto_de_vista"`
	MapName     string `json:"nombre_mapa"`
	MapSize     string `json:"tamano_mapa"`
	Diplomacy   string `json:"diplomacia"`
	TeamSize    string `json:"teams"`
	Teams       []struct {
		Index   int `json:"indice"`
		Players []struct {
			Number    int    `json:"numero"`
			Nickname  string `json:"nickname"`
			Civ       string `json:"civ"`
			Victory   int    `json:"victoria"`
			Color     string `json:"color"`
			ColorCode string `json:"color_cod"` // player color slot
		} `json:"jugadores"`
	} `json:"equipos"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	Topic string          `json:"topic"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// entry holds the data of one processed recorded game
type entry struct {
	item    ReportListItem
	record  *Record
	minimap *ebiten.Image
	loaded  bool
	err     string
}

// Viewer is the desktop minimap gallery
type Viewer struct {
	baseURL    string
	entries    []*entry
	active     int
	stateMutex sync.RWMutex
	wsConn     *websocket.Conn
	lastPoll   time.Time
	status     string
	processing bool
}

// NewViewer creates a viewer and loads the report list
func NewViewer(baseURL string) *Viewer {
	v := &Viewer{baseURL: strings.TrimSuffix(baseURL, "/")}

	if err := v.connectWebSocket(); err != nil {
		log.Printf("Failed to connect WebSocket: %v (falling back to polling)", err)
	} else {
		go v.listenWebSocket()
	}

	v.refresh("")
	return v
}

// connectWebSocket subscribes to every replay event
func (v *Viewer) connectWebSocket() error {
	u, err := url.Parse(v.baseURL)
	if err != nil {
		return err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}

	wsURL := url.URL{Scheme: scheme, Host: u.Host, Path: "/ws"}
	q := wsURL.Query()
	q.Set("topic", "*")
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	v.wsConn = conn
	log.Printf("WebSocket connected to %s", wsURL.String())
	return nil
}

// listenWebSocket refreshes the gallery when a recorded game is processed
func (v *Viewer) listenWebSocket() {
	defer func() {
		v.wsConn.Close()
		v.stateMutex.Lock()
		v.wsConn = nil
		v.stateMutex.Unlock()
	}()

	for {
		_, message, err := v.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error: %v", err)
			return
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		switch wsMsg.Event {
		case "replay_processed", "replay_failed":
			var event struct {
				ID string `json:"id"`
			}
			json.Unmarshal(wsMsg.Data, &event)
			v.refresh(event.ID)
		case "batch_completed":
			v.stateMutex.Lock()
			v.processing = false
			v.status = "Batch completed"
			v.stateMutex.Unlock()
		}
	}
}

// getJSON fetches path and decodes the JSON body into result
func (v *Viewer) getJSON(path string, result interface{}) error {
	resp, err := http.Get(v.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, result)
}

// refresh reloads the report list and selects id when given
func (v *Viewer) refresh(id string) {
	var result struct {
		Reports []ReportListItem `json:"reports"`
	}
	if err := v.getJSON("/api/reports", &result); err != nil {
		v.stateMutex.Lock()
		v.status = fmt.Sprintf("Failed to load reports: %v", err)
		v.stateMutex.Unlock()
		return
	}

	v.stateMutex.Lock()
	defer v.stateMutex.Unlock()

	existing := make(map[string]*entry, len(v.entries))
	for _, e := range v.entries {
		existing[e.item.ID] = e
	}

	entries := make([]*entry, 0, len(result.Reports))
	for _, item := range result.Reports {
		e, ok := existing[item.ID]
		if !ok || !item.ProcessedAt.Equal(e.item.ProcessedAt) {
			e = &entry{}
		}
		e.item = item
		entries = append(entries, e)
	}

	current := ""
	if v.active < len(v.entries) {
		current = v.entries[v.active].item.ID
	}
	if id != "" {
		current = id
	}

	v.entries = entries
	v.active = 0
	for i, e := range entries {
		if e.item.ID == current {
			v.active = i
		}
	}
	v.lastPoll = time.Now()
	v.status = fmt.Sprintf("%d reports", len(entries))
}

// load fetches the record and minimap of an entry
func (v *Viewer) load(e *entry) {
	var rec Record
	if err := v.getJSON("/api/reports/"+url.PathEscape(e.item.ID), &rec); err != nil {
		e.err = err.Error()
		return
	}
	e.record = &rec

	if e.item.Minimap == "" {
		e.err = strings.Join(e.item.Errors, "; ")
		return
	}

	resp, err := http.Get(v.baseURL + "/api/minimaps/" + url.PathEscape(e.item.ID))
	if err != nil {
		e.err = err.Error()
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e.err = err.Error()
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		e.err = fmt.Sprintf("failed to decode minimap: %v", err)
		return
	}
	e.minimap = ebiten.NewImageFromImage(img)
}

// processAll asks the server to process every recorded game
func (v *Viewer) processAll() {
	v.stateMutex.Lock()
	if v.processing {
		v.stateMutex.Unlock()
		return
	}
	v.processing = true
	v.status = "Processing..."
	v.stateMutex.Unlock()

	go func() {
		resp, err := http.Post(v.baseURL+"/api/process", "application/json", strings.NewReader("{}"))
		v.stateMutex.Lock()
		v.processing = false
		if err != nil {
			v.status = fmt.Sprintf("Processing failed: %v", err)
		} else {
			resp.Body.Close()
			v.status = fmt.Sprintf("Processing finished (%d)", resp.StatusCode)
		}
		v.stateMutex.Unlock()
		v.refresh("")
	}()
}

// Update handles input
func (v *Viewer) Update() error {
	v.stateMutex.RLock()
	polling := v.wsConn == nil && time.Since(v.lastPoll) > pollInterval
	count := len(v.entries)
	v.stateMutex.RUnlock()

	// Poll if WebSocket is not connected
	if polling || inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		v.refresh("")
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.processAll()
	}

	if count == 0 {
		return nil
	}

	v.stateMutex.Lock()
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		v.active = (v.active + 1) % count
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		v.active = (v.active - 1 + count) % count
	}
	e := v.entries[v.active]
	if !e.loaded {
		e.loaded = true
		v.load(e)
	}
	v.stateMutex.Unlock()

	return nil
}

// Draw renders the gallery
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})

	v.stateMutex.RLock()
	defer v.stateMutex.RUnlock()

	conn := "POLL"
	if v.wsConn != nil {
		conn = "WS"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("RECORDED GAME MINIMAPS [%s] %s", conn, v.status), 10, 5)
	ebitenutil.DebugPrintAt(screen, "<-/-> browse   P process all   F5 refresh", 10, 20)

	if len(v.entries) == 0 {
		ebitenutil.DebugPrintAt(screen, "No reports yet. Press P to process the replay directory.", 10, headerHeight+10)
		return
	}

	e := v.entries[v.active]
	title := fmt.Sprintf("[%d/%d] %s", v.active+1, len(v.entries), e.item.Replay)
	ebitenutil.DebugPrintAt(screen, title, 10, headerHeight)

	if e.minimap != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(minimapScale, minimapScale)
		op.GeoM.Translate(10, headerHeight+20)
		screen.DrawImage(e.minimap, op)
	}
	if e.err != "" {
		ebitenutil.DebugPrintAt(screen, "ERROR: "+e.err, 10, screenHeight-20)
	}

	if e.record != nil && e.record.Report != nil {
		v.drawReport(screen, e.record.Report, 630, headerHeight)
	}
}

// drawReport renders the match report side panel
func (v *Viewer) drawReport(screen *ebiten.Image, r *MatchReport, x, y int) {
	diplomacy := r.Diplomacy
	if r.TeamSize != "" {
		diplomacy += " " + r.TeamSize
	}
	lines := []string{
		r.MapName + " (" + r.MapSize + ")",
		"Duration: " + r.Duration,
		"Recorded by: " + r.PointOfView,
		diplomacy,
	}
	for _, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, x, y)
		y += 15
	}

	for _, team := range r.Teams {
		y += 10
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Team %d", team.Index), x, y)
		y += 15
		for _, p := range team.Players {
			if slot, err := strconv.Atoi(p.ColorCode); err == nil && slot >= 0 && slot < len(slotColors) {
				ebitenutil.DrawRect(screen, float64(x), float64(y+3), 10, 10, slotColors[slot])
			}
			result := ""
			if p.Victory == 0 {
				result = " WIN"
			}
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s - %s%s", p.Nickname, p.Civ, result), x+15, y)
			y += 15
		}
	}
}

// Layout returns the viewer screen size
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	baseURL := "http://localhost:8080"
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}

	viewer := NewViewer(baseURL)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Recorded Game Minimaps")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
