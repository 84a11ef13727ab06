package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestAnalysesEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "analyses")
	if err != nil {
		t.Fatalf("analyses: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)
	if analyses, ok := payload["analyses"].([]any); !ok || len(analyses) != 0 {
		t.Fatalf("expected empty analyses list: %v", payload)
	}
}

func TestExportSRTFromJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	jsonPath := writeAnalysisJSON(t, env.baseDir)
	output := filepath.Join(env.baseDir, "subs.srt")

	out, _, err := runCLI(t, env, "export-srt", "--from-json", jsonPath, "--output", output)
	if err != nil {
		t.Fatalf("export-srt: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)
	if payload["cues"] != float64(2) {
		t.Fatalf("expected 2 cues: %v", payload)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	content := string(data)
	requireContains(t, content, "00:00:00,000 --> 00:00:02,000")
	requireContains(t, content, "hello there")
	requireContains(t, content, "general kenobi")
}

func TestExportSRTUnknownAnalysis(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "export-srt", "no-such-id")
	if err != nil {
		t.Fatalf("operational failures must not set a nonzero exit: %v", err)
	}
	payload := decodeJSON(t, out)
	if payload["success"] != false || payload["code"] != "not_found" {
		t.Fatalf("expected not_found failure: %v", payload)
	}
}

func TestExportSpeakerFromJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	jsonPath := writeAnalysisJSON(t, env.baseDir)
	output := filepath.Join(env.baseDir, "spk.srt")

	out, _, err := runCLI(t, env, "export-speaker", "--from-json", jsonPath, "--speaker", "SPEAKER_01", "--output", output)
	if err != nil {
		t.Fatalf("export-speaker: %v", err)
	}
	requireSuccess(t, decodeJSON(t, out))

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if strings.Contains(string(data), "hello there") {
		t.Fatalf("other speaker's text leaked: %q", string(data))
	}
	requireContains(t, string(data), "general kenobi")
}

func TestExportSpeakerUnknownSpeaker(t *testing.T) {
	env := setupCLITestEnv(t)
	jsonPath := writeAnalysisJSON(t, env.baseDir)

	out, _, err := runCLI(t, env, "export-speaker", "--from-json", jsonPath, "--speaker", "SPEAKER_09")
	if err != nil {
		t.Fatalf("operational failures must not set a nonzero exit: %v", err)
	}
	payload := decodeJSON(t, out)
	if payload["success"] != false || payload["code"] != "speaker_not_found" {
		t.Fatalf("expected speaker_not_found failure: %v", payload)
	}
}

func TestExportSpeakersFromJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	jsonPath := writeAnalysisJSON(t, env.baseDir)
	dir := filepath.Join(env.baseDir, "speakers")

	out, _, err := runCLI(t, env, "export-speakers", "--from-json", jsonPath, "--dir", dir)
	if err != nil {
		t.Fatalf("export-speakers: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)
	files, ok := payload["files"].([]any)
	if !ok || len(files) != 2 {
		t.Fatalf("expected 2 files: %v", payload)
	}
	for _, file := range files {
		if _, err := os.Stat(file.(string)); err != nil {
			t.Fatalf("missing exported file %v: %v", file, err)
		}
	}
}

func TestExtractSpeakerFromJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	jsonPath := writeAnalysisJSON(t, env.baseDir)
	audio := filepath.Join(env.baseDir, "source.mp3")
	if err := os.WriteFile(audio, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	output := filepath.Join(env.baseDir, "speaker00.mp3")

	out, _, err := runCLI(t, env,
		"extract-speaker",
		"--from-json", jsonPath,
		"--speaker", "SPEAKER_00",
		"--audio", audio,
		"--output", output,
	)
	if err != nil {
		t.Fatalf("extract-speaker: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)
	if payload["output_path"] != output {
		t.Fatalf("unexpected output path: %v", payload)
	}
	if payload["duration"] != float64(2) {
		t.Fatalf("expected 2s of extracted audio: %v", payload)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

func TestExtractSpeakerPerSentence(t *testing.T) {
	env := setupCLITestEnv(t)
	jsonPath := writeAnalysisJSON(t, env.baseDir)
	audio := filepath.Join(env.baseDir, "source.mp3")
	if err := os.WriteFile(audio, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	dir := filepath.Join(env.baseDir, "clips")

	out, _, err := runCLI(t, env,
		"extract-speaker",
		"--from-json", jsonPath,
		"--speaker", "SPEAKER_01",
		"--audio", audio,
		"--output", dir,
		"--per-sentence",
	)
	if err != nil {
		t.Fatalf("extract-speaker --per-sentence: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)
	clips, ok := payload["clips"].([]any)
	if !ok || len(clips) != 1 {
		t.Fatalf("expected 1 clip: %v", payload)
	}
	clip := clips[0].(map[string]any)
	if clip["text"] != "general kenobi" {
		t.Fatalf("clip lost its text: %v", clip)
	}
	if _, err := os.Stat(filepath.Join(dir, "sentence_001.mp3")); err != nil {
		t.Fatalf("clip file missing: %v", err)
	}
}

func TestExtractSpeakerNoSource(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "extract-speaker", "--speaker", "SPEAKER_00")
	if err == nil || !strings.Contains(err.Error(), "an analysis id or --from-json file is required") {
		t.Fatalf("expected the missing-source usage error, got %v", err)
	}
}

func TestExtractSpeakerMissingAudio(t *testing.T) {
	env := setupCLITestEnv(t)
	jsonPath := writeAnalysisJSON(t, env.baseDir)

	out, _, err := runCLI(t, env,
		"extract-speaker",
		"--from-json", jsonPath,
		"--speaker", "SPEAKER_00",
		"--audio", filepath.Join(env.baseDir, "absent.mp3"),
	)
	if err != nil {
		t.Fatalf("operational failures must not set a nonzero exit: %v", err)
	}
	payload := decodeJSON(t, out)
	if payload["success"] != false || payload["code"] != "input_not_found" {
		t.Fatalf("expected input_not_found failure: %v", payload)
	}
}

func TestMediaInfo(t *testing.T) {
	env := setupCLITestEnv(t)
	audio := filepath.Join(env.baseDir, "clip.mp3")
	if err := os.WriteFile(audio, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	out, _, err := runCLI(t, env, "media", "info", audio)
	if err != nil {
		t.Fatalf("media info: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)
	info := payload["info"].(map[string]any)
	if info["format_name"] != "mp3" || info["duration"] != float64(12.5) {
		t.Fatalf("ffprobe payload not parsed: %v", info)
	}
}

func TestMediaConvert(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "clip.wav")
	if err := os.WriteFile(input, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, _, err := runCLI(t, env, "media", "convert", input, "mp3")
	if err != nil {
		t.Fatalf("media convert: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)
	if payload["output_path"] != filepath.Join(env.baseDir, "clip.mp3") {
		t.Fatalf("unexpected output path: %v", payload)
	}
}

func TestMediaBatchConvertBestEffort(t *testing.T) {
	env := setupCLITestEnv(t)
	good := filepath.Join(env.baseDir, "good.wav")
	if err := os.WriteFile(good, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	missing := filepath.Join(env.baseDir, "missing.wav")

	out, _, err := runCLI(t, env, "media", "batch-convert", "mp3", good, missing)
	if err != nil {
		t.Fatalf("media batch-convert: %v", err)
	}
	payload := decodeJSON(t, out)
	if payload["success"] != false {
		t.Fatalf("a failing item must fail the batch: %v", payload)
	}
	if payload["success_count"] != float64(1) || payload["fail_count"] != float64(1) {
		t.Fatalf("unexpected counts: %v", payload)
	}
	items := payload["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected per-item results: %v", items)
	}
}

func TestMediaMergeAndTrim(t *testing.T) {
	env := setupCLITestEnv(t)
	a := filepath.Join(env.baseDir, "a.mp3")
	b := filepath.Join(env.baseDir, "b.mp3")
	for _, path := range []string{a, b} {
		if err := os.WriteFile(path, []byte("fake audio"), 0o644); err != nil {
			t.Fatalf("write input: %v", err)
		}
	}

	merged := filepath.Join(env.baseDir, "merged.mp3")
	out, _, err := runCLI(t, env, "media", "merge", a, b, "--output", merged)
	if err != nil {
		t.Fatalf("media merge: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)
	if payload["inputs"] != float64(2) {
		t.Fatalf("unexpected merge report: %v", payload)
	}

	out, _, err = runCLI(t, env, "media", "trim", a, "--start", "1", "--end", "2")
	if err != nil {
		t.Fatalf("media trim: %v", err)
	}
	payload = decodeJSON(t, out)
	requireSuccess(t, payload)
	requireContains(t, payload["output_path"].(string), "a_trimmed")

	// Subtitle-style timestamps are accepted in place of plain seconds.
	out, _, err = runCLI(t, env, "media", "trim", b, "--start", "00:00:01,000", "--end", "00:00:02,500")
	if err != nil {
		t.Fatalf("media trim with timestamps: %v", err)
	}
	requireSuccess(t, decodeJSON(t, out))
}

func TestMediaTrimInvalidRange(t *testing.T) {
	env := setupCLITestEnv(t)
	a := filepath.Join(env.baseDir, "a.mp3")
	if err := os.WriteFile(a, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, _, err := runCLI(t, env, "media", "trim", a, "--start", "5", "--end", "2")
	if err != nil {
		t.Fatalf("operational failures must not set a nonzero exit: %v", err)
	}
	payload := decodeJSON(t, out)
	if payload["success"] != false || payload["code"] != "validation_error" {
		t.Fatalf("expected validation_error failure: %v", payload)
	}
}

func TestMediaMux(t *testing.T) {
	env := setupCLITestEnv(t)
	video := filepath.Join(env.baseDir, "talk.mp4")
	audio := filepath.Join(env.baseDir, "voice.m4a")
	for _, path := range []string{video, audio} {
		if err := os.WriteFile(path, []byte("fake media"), 0o644); err != nil {
			t.Fatalf("write input: %v", err)
		}
	}

	output := filepath.Join(env.baseDir, "muxed.mkv")
	out, _, err := runCLI(t, env, "media", "mux", video, "--audio", audio, "--output", output)
	if err != nil {
		t.Fatalf("media mux: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)
	if payload["output_path"] != output {
		t.Fatalf("unexpected mux output: %v", payload)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("muxed file missing: %v", err)
	}
}

func TestMediaMuxMissingAudioTrack(t *testing.T) {
	env := setupCLITestEnv(t)
	video := filepath.Join(env.baseDir, "talk.mp4")
	if err := os.WriteFile(video, []byte("fake media"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, _, err := runCLI(t, env, "media", "mux", video,
		"--audio", filepath.Join(env.baseDir, "absent.m4a"),
		"--output", filepath.Join(env.baseDir, "muxed.mkv"))
	if err != nil {
		t.Fatalf("operational failures must not set a nonzero exit: %v", err)
	}
	payload := decodeJSON(t, out)
	if payload["success"] != false || payload["code"] != "input_not_found" {
		t.Fatalf("expected input_not_found failure: %v", payload)
	}
}

func TestMediaCompressTargetSize(t *testing.T) {
	env := setupCLITestEnv(t)
	video := filepath.Join(env.baseDir, "talk.mp4")
	if err := os.WriteFile(video, []byte("fake media"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, _, err := runCLI(t, env, "media", "compress", video, "--target-size", "1")
	if err != nil {
		t.Fatalf("media compress: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)
	requireContains(t, payload["output_path"].(string), "talk_compressed")
	if payload["original_bytes"] == float64(0) || payload["compressed_bytes"] == float64(0) {
		t.Fatalf("expected size report: %v", payload)
	}
}

func TestModelsList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "models", "list")
	if err != nil {
		t.Fatalf("models list: %v", err)
	}
	payload := decodeJSON(t, out)
	requireSuccess(t, payload)

	available, ok := payload["available_models"].([]any)
	if !ok || len(available) == 0 {
		t.Fatalf("expected catalog models: %v", payload)
	}
	backends, ok := payload["backends"].([]any)
	if !ok || len(backends) != 3 {
		t.Fatalf("expected 3 backend probes: %v", payload)
	}
	if installed, ok := payload["installed_models"].([]any); ok && len(installed) != 0 {
		t.Fatalf("fresh models dir should have nothing installed: %v", payload)
	}
}

func TestModelsDownloadUnknownModel(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "models", "download", "nonexistent-size")
	if err != nil {
		t.Fatalf("operational failures must not set a nonzero exit: %v", err)
	}
	payload := decodeJSON(t, out)
	if payload["success"] != false || payload["code"] != "validation_error" {
		t.Fatalf("expected validation_error failure: %v", payload)
	}
}

func TestModelsDownloadPyannoteRequiresAuth(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "models", "download", "--family", "pyannote", "speaker-diarization")
	if err != nil {
		t.Fatalf("operational failures must not set a nonzero exit: %v", err)
	}
	payload := decodeJSON(t, out)
	if payload["success"] != false || payload["code"] != "auth_required" {
		t.Fatalf("expected auth_required failure: %v", payload)
	}
}

func TestStatusRendersTables(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "External tools")
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "Whisper models")
	requireContains(t, out, "large-v3")
}

func TestAnalyzeMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)
	// Stub whisper-cli so the backend availability probe passes and the
	// failure is attributed to the missing input, not the environment.
	binDir := filepath.Join(env.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	writeStubBinary(t, binDir, "whisper-cli", "#!/bin/sh\nexit 0\n")
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	out, _, err := runCLI(t, env, "analyze", filepath.Join(env.baseDir, "absent.mp3"))
	if err != nil {
		t.Fatalf("operational failures must not set a nonzero exit: %v", err)
	}
	payload := decodeJSON(t, out)
	if payload["success"] != false || payload["code"] != "input_not_found" {
		t.Fatalf("expected input_not_found failure: %v", payload)
	}
}
