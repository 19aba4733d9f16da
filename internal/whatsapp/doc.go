// Package whatsapp delivers finished videos to a WhatsApp chat through
// a local whatsapp-web.js gateway. The video is first parked on
// tmpfiles.org because the gateway fetches message media by URL.
package whatsapp
