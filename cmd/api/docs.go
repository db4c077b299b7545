package main

// @title           Chat Assistente API
// @version         1.0
// @description     API de chat com persistência de conversas e respostas do assistente em streaming

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /api/v1
