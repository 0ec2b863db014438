// platform/glfw.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// This a slightly modified version of the GLFW infrastructure from
// imgui-go-examples, where the main addition is cursor handling
// (backported from imgui's backends/imgui_impl_glfw.cpp), and some
// additional handling of text input outside of the imgui path.

package platform

import (
	"fmt"
	gomath "math"
	"runtime"

	"github.com/mmp/xsect/log"
	"github.com/mmp/xsect/math"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwPlatform implements the Platform interface using GLFW.
type glfwPlatform struct {
	imguiIO *imgui.IO

	window *glfw.Window
	config *Config

	time                   float64
	mouseJustPressed       [3]bool
	mouseCursors           [imgui.MouseCursorCOUNT]*glfw.Cursor
	currentCursor          *glfw.Cursor
	inputCharacters        string
	anyEvents              bool
	lastMouseX, lastMouseY float64
	multisample            bool
	windowTitle            string
	mouseCapture           math.Extent2D
}

// New returns a new instance of a Platform implemented with a window
// of the specified size open at the specified position on the screen.
func New(config *Config, lg *log.Logger) (Platform, error) {
	lg.Info("Starting GLFW initialization")
	err := glfw.Init()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}
	lg.Infof("GLFW: %s", glfw.GetVersionString())

	io := imgui.CurrentIO()
	io.SetBackendFlags(io.BackendFlags() | imgui.BackendFlagsHasMouseCursors)

	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	vm := glfw.GetPrimaryMonitor().GetVideoMode()
	if config.InitialWindowSize[0] == 0 || config.InitialWindowSize[1] == 0 {
		config.InitialWindowSize[0] = vm.Width - 150
		config.InitialWindowSize[1] = vm.Height - 150
	}

	// If window position is out of bounds, create the window at (100, 100)
	if config.InitialWindowPosition[0] < 0 || config.InitialWindowPosition[1] < 0 ||
		config.InitialWindowPosition[0] > vm.Width || config.InitialWindowPosition[1] > vm.Height {
		config.InitialWindowPosition = [2]int{100, 100}
	}
	// Start with an invisible window so that we can position it first
	glfw.WindowHint(glfw.Visible, 0)
	// Maybe enable multisampling
	if config.EnableMSAA {
		glfw.WindowHint(glfw.Samples, 4)
	}
	window, err := glfw.CreateWindow(config.InitialWindowSize[0], config.InitialWindowSize[1], "xsect", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.SetPos(config.InitialWindowPosition[0], config.InitialWindowPosition[1])
	window.Show()
	window.MakeContextCurrent()

	platform := &glfwPlatform{
		config:      config,
		imguiIO:     io,
		window:      window,
		multisample: config.EnableMSAA,
	}
	platform.installCallbacks()
	platform.createMouseCursors()
	platform.EnableVSync(true)

	lg.Info("Finished GLFW initialization")

	return platform, nil
}

func (g *glfwPlatform) DPIScale() float32 {
	if runtime.GOOS == "windows" {
		sx, sy := g.window.GetContentScale()
		return float32(int((sx + sy) / 2))
	} else {
		return g.FramebufferSize()[0] / g.DisplaySize()[0]
	}
}

func (g *glfwPlatform) EnableVSync(sync bool) {
	if sync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

func (g *glfwPlatform) Dispose() {
	g.window.Destroy()
	glfw.Terminate()
}

func (g *glfwPlatform) InputCharacters() string {
	return g.inputCharacters
}

func (g *glfwPlatform) ShouldStop() bool {
	return g.window.ShouldClose()
}

func (g *glfwPlatform) CancelShouldStop() {
	g.window.SetShouldClose(false)
}

func (g *glfwPlatform) ProcessEvents() bool {
	g.inputCharacters = ""
	g.anyEvents = false

	glfw.PollEvents()

	if g.anyEvents {
		return true
	}

	for i := 0; i < len(g.mouseJustPressed); i++ {
		if g.window.GetMouseButton(glfwButtonIDByIndex[imgui.MouseButton(i)]) == glfw.Press {
			return true
		}
	}

	x, y := g.window.GetCursorPos()
	if x != g.lastMouseX || y != g.lastMouseY {
		g.lastMouseX, g.lastMouseY = x, y
		return true
	}

	return false
}

func (g *glfwPlatform) DisplaySize() [2]float32 {
	w, h := g.window.GetSize()
	return [2]float32{float32(w), float32(h)}
}

func (g *glfwPlatform) WindowSize() [2]int {
	w, h := g.window.GetSize()
	return [2]int{w, h}
}

func (g *glfwPlatform) WindowPosition() [2]int {
	x, y := g.window.GetPos()
	return [2]int{x, y}
}

func (g *glfwPlatform) FramebufferSize() [2]float32 {
	w, h := g.window.GetFramebufferSize()
	return [2]float32{float32(w), float32(h)}
}

func (g *glfwPlatform) NewFrame() {
	if g.multisample {
		gl.Enable(gl.MULTISAMPLE)
	}

	// Setup display size (every frame to accommodate for window resizing)
	displaySize := g.DisplaySize()
	g.imguiIO.SetDisplaySize(imgui.Vec2{X: displaySize[0], Y: displaySize[1]})

	// Setup time step
	currentTime := glfw.GetTime()
	if g.time > 0 {
		g.imguiIO.SetDeltaTime(float32(currentTime - g.time))
	}
	g.time = currentTime

	// Setup inputs
	if g.window.GetAttrib(glfw.Focused) != 0 {
		pc := g.getCursorPos()
		if g.mouseCapture.Width() > 0 && g.mouseCapture.Height() > 0 && !g.mouseCapture.Inside(pc) {
			pc = g.mouseCapture.ClosestPointInBox(pc)
		}
		g.imguiIO.SetMousePos(imgui.Vec2{X: pc[0], Y: pc[1]})
	} else {
		g.imguiIO.SetMousePos(imgui.Vec2{X: -gomath.MaxFloat32, Y: -gomath.MaxFloat32})
	}

	for i := 0; i < len(g.mouseJustPressed); i++ {
		down := g.mouseJustPressed[i] ||
			(g.window.GetMouseButton(glfwButtonIDByIndex[imgui.MouseButton(i)]) == glfw.Press)
		g.imguiIO.SetMouseButtonDown(i, down)
		g.mouseJustPressed[i] = false
	}

	// Mouse cursor
	imgui_cursor := imgui.CurrentMouseCursor()

	if imgui_cursor == imgui.MouseCursorNone {
		// Hide OS mouse cursor if imgui is drawing it or if it wants no cursor
		g.window.SetInputMode(glfw.CursorMode, glfw.CursorHidden)
	} else {
		// Show OS mouse cursor
		cursor := g.mouseCursors[imgui_cursor]
		if cursor == nil {
			cursor = g.mouseCursors[imgui.MouseCursorArrow]
		}
		if cursor != g.currentCursor {
			g.currentCursor = cursor
			g.window.SetCursor(cursor)
		}

		g.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}

	// If mouse capture is enabled, check the mouse position and clamp it
	// to the bounds if necessary.
	if g.mouseCapture.Width() > 0 && g.mouseCapture.Height() > 0 {
		pc := g.getCursorPos()
		if !g.mouseCapture.Inside(pc) {
			pc = g.mouseCapture.ClosestPointInBox(pc)
			g.window.SetCursorPos(float64(pc[0]), float64(pc[1]))
		}
	}
}

func (g *glfwPlatform) getCursorPos() [2]float32 {
	x, y := g.window.GetCursorPos()
	return [2]float32{float32(int(x)), float32(int(y))}
}

func (g *glfwPlatform) PostRender() {
	g.window.SwapBuffers()
}

func (g *glfwPlatform) installCallbacks() {
	g.window.SetMouseButtonCallback(g.mouseButtonChange)
	g.window.SetScrollCallback(g.mouseScrollChange)
	g.window.SetKeyCallback(g.keyChange)
	g.window.SetCharCallback(g.charChange)
}

var glfwButtonIndexByID = map[glfw.MouseButton]imgui.MouseButton{
	glfw.MouseButton1: MouseButtonPrimary,
	glfw.MouseButton2: MouseButtonSecondary,
	glfw.MouseButton3: MouseButtonTertiary,
}

var glfwButtonIDByIndex = map[imgui.MouseButton]glfw.MouseButton{
	MouseButtonPrimary:   glfw.MouseButton1,
	MouseButtonSecondary: glfw.MouseButton2,
	MouseButtonTertiary:  glfw.MouseButton3,
}

func (g *glfwPlatform) mouseButtonChange(window *glfw.Window, rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	buttonIndex, known := glfwButtonIndexByID[rawButton]

	if !known {
		return
	}

	g.anyEvents = true
	if action == glfw.Press {
		g.mouseJustPressed[buttonIndex] = true
	}
	g.updateKeyModifiers()
}

func (g *glfwPlatform) mouseScrollChange(window *glfw.Window, x, y float64) {
	g.anyEvents = true
	g.imguiIO.AddMouseWheelDelta(float32(x), float32(y))
}

func (g *glfwPlatform) keyChange(window *glfw.Window, keycode glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	g.anyEvents = true
	g.updateKeyModifiers()

	if action != glfw.Press && action != glfw.Release {
		return
	}

	kc := translateUntranslatedKey(keycode, scancode)
	imguikey := glfwKeyToImguiKey(kc)
	g.imguiIO.AddKeyEvent(imguikey, action == glfw.Press)
}

func (g *glfwPlatform) updateKeyModifiers() {
	g.imguiIO.AddKeyEvent(imgui.ModShift, g.window.GetKey(glfw.KeyLeftShift) == glfw.Press || g.window.GetKey(glfw.KeyRightShift) == glfw.Press)
	g.imguiIO.AddKeyEvent(imgui.ModAlt, g.window.GetKey(glfw.KeyLeftAlt) == glfw.Press || g.window.GetKey(glfw.KeyRightAlt) == glfw.Press)
	if runtime.GOOS == "darwin" {
		// imgui "helpfully" swaps the Command and Control modifier keys on
		// OSX. So we need to undo that here so that control still comes
		// through as control.
		g.imguiIO.AddKeyEvent(imgui.ModSuper, g.window.GetKey(glfw.KeyLeftControl) == glfw.Press || g.window.GetKey(glfw.KeyRightControl) == glfw.Press)
		g.imguiIO.AddKeyEvent(imgui.ModCtrl, g.window.GetKey(glfw.KeyLeftSuper) == glfw.Press || g.window.GetKey(glfw.KeyRightSuper) == glfw.Press)
	} else {
		g.imguiIO.AddKeyEvent(imgui.ModCtrl, g.window.GetKey(glfw.KeyLeftControl) == glfw.Press || g.window.GetKey(glfw.KeyRightControl) == glfw.Press)
		g.imguiIO.AddKeyEvent(imgui.ModSuper, g.window.GetKey(glfw.KeyLeftSuper) == glfw.Press || g.window.GetKey(glfw.KeyRightSuper) == glfw.Press)
	}
}

func (g *glfwPlatform) charChange(window *glfw.Window, char rune) {
	g.anyEvents = true
	g.imguiIO.AddInputCharactersUTF8(string(char))
	g.inputCharacters = g.inputCharacters + string(char)
}

func (g *glfwPlatform) createMouseCursors() {
	g.mouseCursors[imgui.MouseCursorArrow] = glfw.CreateStandardCursor(glfw.ArrowCursor)
	g.mouseCursors[imgui.MouseCursorTextInput] = glfw.CreateStandardCursor(glfw.IBeamCursor)
	g.mouseCursors[imgui.MouseCursorResizeAll] = glfw.CreateStandardCursor(glfw.ArrowCursor) // FIXME: GLFW doesn't have this.
	g.mouseCursors[imgui.MouseCursorResizeNS] = glfw.CreateStandardCursor(glfw.VResizeCursor)
	g.mouseCursors[imgui.MouseCursorResizeEW] = glfw.CreateStandardCursor(glfw.HResizeCursor)
	g.mouseCursors[imgui.MouseCursorResizeNESW] = glfw.CreateStandardCursor(glfw.ArrowCursor) // FIXME: GLFW doesn't have this.
	g.mouseCursors[imgui.MouseCursorResizeNWSE] = glfw.CreateStandardCursor(glfw.ArrowCursor) // FIXME: GLFW doesn't have this.
	g.mouseCursors[imgui.MouseCursorHand] = glfw.CreateStandardCursor(glfw.HandCursor)
}

func (g *glfwPlatform) SetWindowTitle(text string) {
	if text != g.windowTitle {
		g.window.SetTitle(text)
		g.windowTitle = text
	}
}

func (g *glfwPlatform) GetClipboard() imgui.ClipboardHandler {
	return glfwClipboard{window: g.window}
}

type glfwClipboard struct {
	window *glfw.Window
}

func (cb glfwClipboard) GetClipboard() string {
	return cb.window.GetClipboardString()
}

func (cb glfwClipboard) SetClipboard(text string) {
	cb.window.SetClipboardString(text)
}

func (g *glfwPlatform) StartCaptureMouse(e math.Extent2D) {
	g.mouseCapture = math.Extent2D{
		P0: [2]float32{math.Ceil(e.P0[0]), math.Ceil(e.P0[1])},
		P1: [2]float32{math.Floor(e.P1[0]), math.Floor(e.P1[1])}}
}

func (g *glfwPlatform) EndCaptureMouse() {
	g.mouseCapture = math.Extent2D{}
}

// Translation of ImGui_ImplGlfw_TranslateUntranslatedKey from imgui/backends/imgui_impl_glfw.cpp
func translateUntranslatedKey(key glfw.Key, scancode int) glfw.Key {
	if key >= glfw.KeyKP0 && key <= glfw.KeyKPEqual {
		return key
	}
	name := glfw.GetKeyName(key, scancode)
	if len(name) == 1 {
		if name[0] >= '0' && name[0] <= '9' {
			return glfw.Key0 + glfw.Key(name[0]-'0')
		} else if name[0] >= 'A' && name[0] <= 'Z' {
			return glfw.KeyA + glfw.Key(name[0]-'A')
		} else if name[0] >= 'a' && name[0] <= 'z' {
			return glfw.KeyA + glfw.Key(name[0]-'a')
		} else {
			chars := map[byte]glfw.Key{
				'`':  glfw.KeyGraveAccent,
				'-':  glfw.KeyMinus,
				'=':  glfw.KeyEqual,
				'[':  glfw.KeyLeftBracket,
				']':  glfw.KeyRightBracket,
				'\\': glfw.KeyBackslash,
				',':  glfw.KeyComma,
				';':  glfw.KeySemicolon,
				'\'': glfw.KeyApostrophe,
				'.':  glfw.KeyPeriod,
				'/':  glfw.KeySlash,
			}
			if k, ok := chars[name[0]]; ok {
				return k
			}
		}
	}
	return key
}

func glfwKeyToImguiKey(keycode glfw.Key) imgui.Key {
	// The contiguous ranges can be translated with offset arithmetic.
	switch {
	case keycode >= glfw.Key0 && keycode <= glfw.Key9:
		return imgui.Key0 + imgui.Key(keycode-glfw.Key0)
	case keycode >= glfw.KeyA && keycode <= glfw.KeyZ:
		return imgui.KeyA + imgui.Key(keycode-glfw.KeyA)
	case keycode >= glfw.KeyF1 && keycode <= glfw.KeyF24:
		return imgui.KeyF1 + imgui.Key(keycode-glfw.KeyF1)
	case keycode >= glfw.KeyKP0 && keycode <= glfw.KeyKP9:
		return imgui.KeyKeypad0 + imgui.Key(keycode-glfw.KeyKP0)
	}

	if k, ok := glfwImguiKeys[keycode]; ok {
		return k
	}
	return imgui.KeyNone
}

var glfwImguiKeys = map[glfw.Key]imgui.Key{
	glfw.KeyTab:          imgui.KeyTab,
	glfw.KeyLeft:         imgui.KeyLeftArrow,
	glfw.KeyRight:        imgui.KeyRightArrow,
	glfw.KeyUp:           imgui.KeyUpArrow,
	glfw.KeyDown:         imgui.KeyDownArrow,
	glfw.KeyPageUp:       imgui.KeyPageUp,
	glfw.KeyPageDown:     imgui.KeyPageDown,
	glfw.KeyHome:         imgui.KeyHome,
	glfw.KeyEnd:          imgui.KeyEnd,
	glfw.KeyInsert:       imgui.KeyInsert,
	glfw.KeyDelete:       imgui.KeyDelete,
	glfw.KeyBackspace:    imgui.KeyBackspace,
	glfw.KeySpace:        imgui.KeySpace,
	glfw.KeyEnter:        imgui.KeyEnter,
	glfw.KeyEscape:       imgui.KeyEscape,
	glfw.KeyApostrophe:   imgui.KeyApostrophe,
	glfw.KeyComma:        imgui.KeyComma,
	glfw.KeyMinus:        imgui.KeyMinus,
	glfw.KeyPeriod:       imgui.KeyPeriod,
	glfw.KeySlash:        imgui.KeySlash,
	glfw.KeySemicolon:    imgui.KeySemicolon,
	glfw.KeyEqual:        imgui.KeyEqual,
	glfw.KeyLeftBracket:  imgui.KeyLeftBracket,
	glfw.KeyBackslash:    imgui.KeyBackslash,
	glfw.KeyWorld1:       imgui.KeyOem102,
	glfw.KeyWorld2:       imgui.KeyOem102,
	glfw.KeyRightBracket: imgui.KeyRightBracket,
	glfw.KeyGraveAccent:  imgui.KeyGraveAccent,
	glfw.KeyCapsLock:     imgui.KeyCapsLock,
	glfw.KeyScrollLock:   imgui.KeyScrollLock,
	glfw.KeyNumLock:      imgui.KeyNumLock,
	glfw.KeyPrintScreen:  imgui.KeyPrintScreen,
	glfw.KeyPause:        imgui.KeyPause,
	glfw.KeyKPDecimal:    imgui.KeyKeypadDecimal,
	glfw.KeyKPDivide:     imgui.KeyKeypadDivide,
	glfw.KeyKPMultiply:   imgui.KeyKeypadMultiply,
	glfw.KeyKPSubtract:   imgui.KeyKeypadSubtract,
	glfw.KeyKPAdd:        imgui.KeyKeypadAdd,
	glfw.KeyKPEnter:      imgui.KeyKeypadEnter,
	glfw.KeyKPEqual:      imgui.KeyKeypadEqual,
	glfw.KeyLeftShift:    imgui.KeyLeftShift,
	glfw.KeyLeftControl:  imgui.KeyLeftCtrl,
	glfw.KeyLeftAlt:      imgui.KeyLeftAlt,
	glfw.KeyLeftSuper:    imgui.KeyLeftSuper,
	glfw.KeyRightShift:   imgui.KeyRightShift,
	glfw.KeyRightControl: imgui.KeyRightCtrl,
	glfw.KeyRightAlt:     imgui.KeyRightAlt,
	glfw.KeyRightSuper:   imgui.KeyRightSuper,
	glfw.KeyMenu:         imgui.KeyMenu,
}
