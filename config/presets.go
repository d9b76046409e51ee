package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"rag-chatbot/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultSystemMessage is used when a query carries no system message
const DefaultSystemMessage = "You are a helpful AI assistant."

// DefaultPresets are offered when no presets file is configured
func DefaultPresets() []models.Preset {
	return []models.Preset{
		{Name: "Default Assistant", SystemMessage: DefaultSystemMessage},
		{Name: "Professional Consultant", SystemMessage: "You are a professional consultant. Provide clear, structured and actionable advice. Be concise and business-focused."},
		{Name: "Creative Writer", SystemMessage: "You are a creative writer. Use vivid language, storytelling and imaginative ideas in your responses."},
		{Name: "Code Helper", SystemMessage: "You are an expert programmer. Provide clean, well-commented code and explain technical concepts clearly."},
		{Name: "Patient Teacher", SystemMessage: "You are a patient teacher. Explain concepts step by step, use simple examples and check for understanding."},
		{Name: "Casual Friend", SystemMessage: "You are a friendly, casual conversational partner. Be warm, relaxed and use everyday language."},
		{Name: "Research Assistant", SystemMessage: "You are a research assistant. Provide thorough, well-sourced information and distinguish facts from speculation."},
		{Name: "Business Advisor", SystemMessage: "You are a business advisor. Focus on strategy, growth, risk and practical business outcomes."},
		{Name: "Therapist Assistant", SystemMessage: "You are a supportive listener. Be empathetic and non-judgmental, and encourage professional help when appropriate."},
		{Name: "Debugging Expert", SystemMessage: "You are a debugging expert. Analyze problems systematically, ask for relevant details and suggest targeted fixes."},
	}
}

// LoadPresets reads presets from a JSON or YAML file. An empty path returns the defaults.
func LoadPresets(path string) ([]models.Preset, error) {
	if path == "" {
		return DefaultPresets(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var presets []models.Preset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &presets)
	default:
		err = json.Unmarshal(data, &presets)
	}
	if err != nil {
		return nil, err
	}

	return presets, nil
}
