package dialogflow

// Export for testing
var ParseParameters = parseParameters
