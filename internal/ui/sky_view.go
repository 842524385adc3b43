package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/soniakeys/unit"

	"github.com/DanLyss/AstroNavigation/internal/astro"
	"github.com/DanLyss/AstroNavigation/internal/nav"
	"github.com/DanLyss/AstroNavigation/internal/state"
)

const (
	// Field of view in degrees
	fovAz = 120.0 // horizontal FOV
	fovEl = 60.0  // vertical FOV

	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	// Solved star glyphs
	glyphSolved        = '✦'
	glyphSolvedFocused = '◆'

	colorSolved        = "#d0c8ff"
	colorSolvedFocused = "229" // bright gold

	// Catalogue star glyphs by magnitude
	glyphStarBright  = '✶' // mag < 1.5
	glyphStarMedium  = '✸' // mag 1.5-3.0
	glyphStarDim     = '·' // mag 3.0-4.0
	glyphStarVeryDim = '·' // mag > 4.0

	// Catalogue colors (grayscale to not compete with solved stars)
	colorStarBright  = "255"
	colorStarMedium  = "250"
	colorStarDim     = "244"
	colorStarVeryDim = "240"

	// identifyRadius is how close a catalogue star must be to name a solved star.
	identifyRadius = 0.5 // degrees
)

// LabelMode controls how star labels are displayed.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only focused star
	LabelAll                      // All solved stars
)

// skyStar is a solved star prepared for display.
type skyStar struct {
	name   string
	alt    float64 // degrees
	az     float64 // degrees
	ra     float64
	dec    float64
	offset float64 // separation from the catalogue prediction at the fix, degrees
}

// SkyViewModel renders the sky around the solved stars.
type SkyViewModel struct {
	width  int
	height int

	// Camera position (center of view)
	camAz float64
	camEl float64

	// Animation state
	animating   bool
	animStartAz float64
	animStartEl float64
	animTargAz  float64
	animTargEl  float64
	animStart   time.Time

	focusIdx int
	stars    []skyStar

	// Observer and time of the fix, for the catalogue overlay
	observer    astro.Observer
	when        time.Time
	hasFix      bool
	showCatalog bool

	labelMode LabelMode

	catalog astro.Catalog
}

// NewSkyViewModel creates a new sky view model.
func NewSkyViewModel() SkyViewModel {
	return SkyViewModel{
		camAz:       180,
		camEl:       45,
		labelMode:   LabelFocused,
		showCatalog: true,
		catalog:     astro.DefaultCatalog(),
	}
}

// SetSize updates the viewport size.
func (m SkyViewModel) SetSize(width, height int) SkyViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData shows the stars of the given entry.
func (m SkyViewModel) UpdateData(e *state.Entry) SkyViewModel {
	if e == nil || !e.OK() {
		m.stars = nil
		m.hasFix = false
		m.focusIdx = 0
		return m
	}

	sol := e.Solution
	m.observer = astro.Observer{Lat: sol.Latitude, Lon: sol.Longitude}
	m.when = sol.Observation.Time
	m.hasFix = true
	m.stars = m.buildStars(sol)

	if m.focusIdx >= len(m.stars) {
		m.focusIdx = 0
	}
	if !m.animating && len(m.stars) > 0 {
		m.camAz = m.stars[m.focusIdx].az
		m.camEl = m.stars[m.focusIdx].alt
	}
	return m
}

// buildStars names each solved star after the nearest catalogue star and
// measures how far its solved position lies from the catalogue prediction.
func (m SkyViewModel) buildStars(sol *nav.Solution) []skyStar {
	out := make([]skyStar, len(sol.Stars))
	for i, s := range sol.Stars {
		eq := astro.Equatorial{RA: s.RA, Dec: s.Dec}
		name := fmt.Sprintf("#%d", i)
		if near := m.catalog.Within(eq, unit.AngleFromDeg(identifyRadius)); len(near) > 0 {
			name = near[0].Name
		}
		pred := astro.EquatorialToHorizontal(eq, m.observer, m.when)
		out[i] = skyStar{
			name:   name,
			alt:    s.Alt.Deg(),
			az:     s.Az.Deg(),
			ra:     s.RA.Deg(),
			dec:    s.Dec.Deg(),
			offset: astro.AngularSeparation(s.Az, s.Alt, pred.Az, pred.Alt).Deg(),
		}
	}
	return out
}

// animTickMsg is sent during animation
type animTickMsg time.Time

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages.
func (m SkyViewModel) Update(msg tea.Msg) (SkyViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			return m.focusPrev()
		case "down", "j":
			return m.focusNext()
		case "l":
			m.labelMode = (m.labelMode + 1) % 3
		case "c":
			m.showCatalog = !m.showCatalog
		}

	case animTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

func (m SkyViewModel) focusNext() (SkyViewModel, tea.Cmd) {
	if len(m.stars) == 0 {
		return m, nil
	}
	m.focusIdx = (m.focusIdx + 1) % len(m.stars)
	return m.startAnimation()
}

func (m SkyViewModel) focusPrev() (SkyViewModel, tea.Cmd) {
	if len(m.stars) == 0 {
		return m, nil
	}
	m.focusIdx--
	if m.focusIdx < 0 {
		m.focusIdx = len(m.stars) - 1
	}
	return m.startAnimation()
}

func (m SkyViewModel) startAnimation() (SkyViewModel, tea.Cmd) {
	if m.focusIdx >= len(m.stars) {
		return m, nil
	}

	target := m.stars[m.focusIdx]
	m.animating = true
	m.animStartAz = m.camAz
	m.animStartEl = m.camEl
	m.animTargAz = target.az
	m.animTargEl = target.alt
	m.animStart = time.Now()

	return m, animTick()
}

func (m SkyViewModel) updateAnimation() (SkyViewModel, tea.Cmd) {
	t := float64(time.Since(m.animStart)) / float64(animDuration)

	if t >= 1.0 {
		m.animating = false
		m.camAz = m.animTargAz
		m.camEl = m.animTargEl
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	m.camAz = lerpAngle(m.animStartAz, m.animTargAz, t)
	m.camEl = lerp(m.animStartEl, m.animTargEl, t)

	return m, animTick()
}

// View renders the sky view.
func (m SkyViewModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Sky view requires larger terminal"
	}
	if !m.hasFix {
		return "No fix to display"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderSkyCanvas(m.width, m.height-4))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m SkyViewModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorSolved))

	title := titleStyle.Render("Sky View")

	catalogStr := dimStyle.Render("Catalogue: off")
	if m.showCatalog {
		catalogStr = accentStyle.Render("Catalogue: on")
	}

	var labelStr string
	switch m.labelMode {
	case LabelNone:
		labelStr = dimStyle.Render("Labels: off")
	case LabelFocused:
		labelStr = accentStyle.Render("Labels: focus")
	case LabelAll:
		labelStr = accentStyle.Render("Labels: all")
	}

	compass := dimStyle.Render(fmt.Sprintf("Az:%.0f° El:%.0f°", m.camAz, m.camEl))

	return fmt.Sprintf("%s | %s | %s | %s", title, catalogStr, labelStr, compass)
}

func (m SkyViewModel) renderStatus() string {
	if len(m.stars) == 0 || m.focusIdx >= len(m.stars) {
		return "No stars in view"
	}

	s := m.stars[m.focusIdx]
	line := fmt.Sprintf(">>> %s | RA:%.3f° Dec:%.3f° | Alt:%.2f° Az:%.2f° | off by %.2f°",
		s.name, s.ra, s.dec, s.alt, s.az, s.offset)

	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	return accentStyle.Render(line)
}

// starPos tracks a drawn star for label rendering
type starPos struct {
	x, y       int
	name       string
	isFocused  bool
	labelStart int
	labelEnd   int
}

func (m SkyViewModel) renderSkyCanvas(width, height int) string {
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = "236"
		}
	}

	horizonY := height - 2

	// Catalogue stars as seen from the fix
	if m.showCatalog {
		for _, star := range m.catalog.Stars {
			h := astro.EquatorialToHorizontal(star.Equatorial, m.observer, m.when)
			if h.Alt <= 0 {
				continue
			}
			x, y, visible := m.projectToScreen(h.Az.Deg(), h.Alt.Deg(), width, height)
			if !visible || x < 0 || x >= width || y < 0 || y >= horizonY {
				continue
			}
			glyph, color := m.starGlyph(star.Mag)
			canvas[y][x] = glyph
			colors[y][x] = color
		}
	}

	for x := 0; x < width; x++ {
		canvas[horizonY][x] = '─'
		colors[horizonY][x] = "60"
	}

	m.drawCardinal(canvas, colors, width, height, "N", 0)
	m.drawCardinal(canvas, colors, width, height, "E", 90)
	m.drawCardinal(canvas, colors, width, height, "S", 180)
	m.drawCardinal(canvas, colors, width, height, "W", 270)

	var positions []starPos
	for i, s := range m.stars {
		x, y, visible := m.projectToScreen(s.az, s.alt, width, height)
		if !visible || x < 0 || x >= width || y < 0 || y >= horizonY {
			continue
		}

		isFocused := i == m.focusIdx
		sym := glyphSolved
		color := lipgloss.Color(colorSolved)
		if isFocused {
			sym = glyphSolvedFocused
			color = colorSolvedFocused
		}
		canvas[y][x] = sym
		colors[y][x] = color

		positions = append(positions, starPos{x: x, y: y, name: s.name, isFocused: isFocused})
	}

	m.renderLabels(canvas, colors, width, horizonY, positions)

	// Observer marker at bottom center
	if stationY, stationX := height-1, width/2; stationY >= 0 {
		canvas[stationY][stationX] = '▲'
		colors[stationY][stationX] = "46"
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(colors[y][x])
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderLabels draws star labels. Focused labels win in overlapping regions.
func (m SkyViewModel) renderLabels(canvas [][]rune, colors [][]lipgloss.Color, width, horizonY int, positions []starPos) {
	if m.labelMode == LabelNone || len(positions) == 0 {
		return
	}

	for i := range positions {
		pos := &positions[i]
		pos.labelStart = pos.x + 2
		labelLen := len([]rune(pos.name))
		if pos.isFocused {
			labelLen += 2
		}
		pos.labelEnd = pos.labelStart + labelLen
	}

	focusedClaims := make(map[int]map[int]bool) // y -> x -> claimed
	for _, pos := range positions {
		if !pos.isFocused {
			continue
		}
		if focusedClaims[pos.y] == nil {
			focusedClaims[pos.y] = make(map[int]bool)
		}
		for x := pos.labelStart; x < pos.labelEnd; x++ {
			focusedClaims[pos.y][x] = true
		}
	}

	for _, pos := range positions {
		if m.labelMode == LabelFocused && !pos.isFocused {
			continue
		}

		labelColor := lipgloss.Color(colorSolved)
		labelText := pos.name
		if pos.isFocused {
			labelColor = colorSolvedFocused
			labelText = "◄ " + pos.name
		}

		for i, r := range []rune(labelText) {
			x := pos.labelStart + i
			if x < 0 || x >= width || pos.y < 0 || pos.y >= horizonY {
				continue
			}
			if !pos.isFocused && focusedClaims[pos.y][x] {
				continue
			}
			canvas[pos.y][x] = r
			colors[pos.y][x] = labelColor
		}
	}
}

// starGlyph returns the glyph and color for a catalogue star by magnitude.
func (m SkyViewModel) starGlyph(mag float64) (rune, lipgloss.Color) {
	switch {
	case mag < 1.5:
		return glyphStarBright, colorStarBright
	case mag < 3.0:
		return glyphStarMedium, colorStarMedium
	case mag < 4.0:
		return glyphStarDim, colorStarDim
	default:
		return glyphStarVeryDim, colorStarVeryDim
	}
}

func (m SkyViewModel) drawCardinal(canvas [][]rune, colors [][]lipgloss.Color, width, height int, label string, az float64) {
	x, _, visible := m.projectToScreen(az, 0, width, height)
	if !visible {
		return
	}
	y := height - 2

	if x >= 0 && x < width && y >= 0 && y < height {
		canvas[y][x] = rune(label[0])
		colors[y][x] = "252"
	}
}

// projectToScreen converts az/el to screen coordinates relative to camera
func (m SkyViewModel) projectToScreen(az, el float64, width, height int) (int, int, bool) {
	dAz := normalizeAngle(az - m.camAz)
	dEl := el - m.camEl

	if dAz < -fovAz/2 || dAz > fovAz/2 {
		return 0, 0, false
	}
	if dEl < -fovEl/2 || dEl > fovEl/2 {
		return 0, 0, false
	}

	// Higher elevation is higher on screen
	horizonY := height - 2

	x := int((dAz + fovAz/2) / fovAz * float64(width))
	y := int((fovEl/2 - dEl) / fovEl * float64(horizonY))

	return x, y, true
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	return astro.Normalize(a, -180, 180)
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Init returns nil cmd
func (m SkyViewModel) Init() tea.Cmd {
	return nil
}
