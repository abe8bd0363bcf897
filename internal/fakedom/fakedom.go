//go:build js && wasm
// +build js,wasm

// Package fakedom installs a small document and window on the JS global
// object, so the browser bindings can run under Node in `go test`.
//
// Elements record their listeners and attributes but parse no markup: an
// element whose innerHTML contains "<svg" answers querySelector("svg") with
// a single child carrying the markup's viewBox.
package fakedom

import "syscall/js"

const script = `(function () {
  class FakeEvent {
    constructor(type, props) {
      Object.assign(this, props || {});
      this.type = type;
      this.defaultPrevented = false;
      this.propagationStopped = false;
    }
    preventDefault() { this.defaultPrevented = true; }
    stopPropagation() { this.propagationStopped = true; }
  }

  class FakeElement {
    constructor(tag) {
      this.tagName = tag;
      this.attributes = {};
      this.style = {};
      this.computed = {};
      this.rect = { left: 0, top: 0, width: 0, height: 0 };
      this.children = [];
      this.parentNode = null;
      this.listeners = {};
      this.added = 0;
      this.removed = 0;
      this.detached = false;
      this.markup = "";
      this.svg = null;
      this.textContent = "";
      this.value = "";
      this.checked = false;
      const classes = new Set();
      this.classList = {
        add: (c) => classes.add(c),
        remove: (c) => classes.delete(c),
        contains: (c) => classes.has(c),
      };
    }
    get innerHTML() { return this.markup; }
    set innerHTML(v) {
      this.markup = String(v);
      this.children = [];
      this.svg = null;
    }
    getAttribute(k) { return k in this.attributes ? this.attributes[k] : null; }
    setAttribute(k, v) { this.attributes[k] = String(v); }
    appendChild(c) { c.parentNode = this; this.children.push(c); return c; }
    remove() {
      if (this.parentNode) {
        const p = this.parentNode;
        p.children = p.children.filter((x) => x !== this);
        this.parentNode = null;
      }
      this.detached = true;
    }
    addEventListener(type, fn) {
      (this.listeners[type] = this.listeners[type] || []).push(fn);
      this.added++;
    }
    removeEventListener(type, fn) {
      const l = this.listeners[type] || [];
      const i = l.indexOf(fn);
      if (i >= 0) { l.splice(i, 1); this.removed++; }
    }
    listenerCount() {
      return Object.values(this.listeners).reduce((n, l) => n + l.length, 0);
    }
    dispatch(type, props) {
      const e = new FakeEvent(type, props);
      for (const fn of (this.listeners[type] || []).slice()) fn(e);
      return e;
    }
    getBoundingClientRect() { return this.rect; }
    querySelector(sel) {
      if (sel !== "svg" || !this.markup.includes("<svg")) return null;
      if (!this.svg) {
        this.svg = new FakeElement("svg");
        const m = /viewBox="([^"]*)"/.exec(this.markup);
        if (m) this.svg.attributes.viewBox = m[1];
        this.svg.parentNode = this;
      }
      return this.svg;
    }
  }

  const registry = {};
  const document = new FakeElement("#document");
  document.readyState = "complete";
  document.body = new FakeElement("body");
  document.createElement = (tag) => new FakeElement(tag);
  document.createElementNS = (ns, tag) => new FakeElement(tag);
  document.getElementById = (id) => registry["#" + id] || null;
  document.querySelector = (sel) => registry[sel] || null;
  document.register = (sel, el) => { registry[sel] = el; return el; };

  const window = new FakeElement("#window");
  window.innerHeight = 0;
  window.location = { href: "http://localhost:5173/", search: "" };
  window.getComputedStyle = (el) => el.computed;

  globalThis.document = document;
  globalThis.window = window;
  return { document: document, window: window };
})()`

// DOM is a freshly installed document and window
type DOM struct {
	Document js.Value
	Window   js.Value
}

// Install replaces the global document and window
func Install() DOM {
	v := js.Global().Call("eval", script)
	return DOM{Document: v.Get("document"), Window: v.Get("window")}
}

// Element creates a detached element
func (d DOM) Element(tag string) js.Value {
	return d.Document.Call("createElement", tag)
}

// Register makes el the answer to getElementById("id") for "#id" selectors,
// or to querySelector(selector) otherwise
func (d DOM) Register(selector string, el js.Value) js.Value {
	return d.Document.Call("register", selector, el)
}

// Dispatch runs the listeners for event on el and returns the event object
func Dispatch(el js.Value, event string, props map[string]interface{}) js.Value {
	if props == nil {
		return el.Call("dispatch", event)
	}
	return el.Call("dispatch", event, js.ValueOf(props))
}

// Listeners returns how many listeners el currently holds
func Listeners(el js.Value) int {
	return el.Call("listenerCount").Int()
}

// HasClass reports whether el carries class c
func HasClass(el js.Value, c string) bool {
	return el.Get("classList").Call("contains", c).Bool()
}

// SetRect sets what getBoundingClientRect reports for el
func SetRect(el js.Value, width, height float64) {
	el.Set("rect", js.ValueOf(map[string]interface{}{
		"left": 0, "top": 0, "width": width, "height": height,
	}))
}

// SetComputed sets what getComputedStyle reports for el
func SetComputed(el js.Value, style map[string]interface{}) {
	el.Set("computed", js.ValueOf(style))
}
