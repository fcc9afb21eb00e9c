package model

// IPInfo describes the network an address belongs to.
type IPInfo struct {
	ASN     string `json:"asn"`
	Country string `json:"country"`
	Range   string `json:"range"`
	Type    string `json:"type"`
	Flagged bool   `json:"flagged"`
}

// FingerprintRecord is one observed TCP handshake.
type FingerprintRecord struct {
	ID          string  `json:"id"`
	Timestamp   string  `json:"timestamp"`
	IP          string  `json:"ip"`
	Port        int     `json:"port"`
	TTL         int     `json:"ttl"`
	MSS         int     `json:"mss"`
	Window      int     `json:"window"`
	Flags       string  `json:"flags"`
	OS          string  `json:"os"`
	Risk        int     `json:"risk"`
	IPInfo      *IPInfo `json:"ipInfo,omitempty"`
	Blocked     bool    `json:"blocked"`
	Whitelisted bool    `json:"whitelisted"`
}

func (f FingerprintRecord) RecordID() string { return f.ID }

// Flagged reports whether the record's network is flagged.
func (f FingerprintRecord) Flagged() bool {
	return f.IPInfo != nil && f.IPInfo.Flagged
}

// ScanTarget is the network identity of a scanned address.
type ScanTarget struct {
	IP         string `json:"ip"`
	ISP        string `json:"isp"`
	ASN        string `json:"asn"`
	Country    string `json:"country"`
	City       string `json:"city"`
	ReverseDNS string `json:"reverseDNS"`
}

// ScanResult is the outcome of a TCP fingerprint scan.
type ScanResult struct {
	Target         ScanTarget `json:"target"`
	ProxyDetected  bool       `json:"proxyDetected"`
	ProxyType      string     `json:"proxyType"`
	Confidence     string     `json:"confidence"`
	Anomaly        string     `json:"anomaly"`
	TCPWindowSize  int        `json:"tcpWindowSize"`
	TTL            int        `json:"ttl"`
	TCPOptions     []string   `json:"tcpOptions"`
	OSGuess        string     `json:"osGuess"`
	SynDelay       int        `json:"synDelay"`
	KnownSignature bool       `json:"knownSignature"`
	RiskLabel      string     `json:"riskLabel"`
}
